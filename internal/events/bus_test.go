package events

import (
	"errors"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Publish(TokensRefreshed{AccessToken: "a", RefreshToken: "r"})

	select {
	case ev := <-ch:
		refreshed, ok := ev.(TokensRefreshed)
		if !ok {
			t.Fatalf("received %T, want TokensRefreshed", ev)
		}
		if refreshed.AccessToken != "a" || refreshed.RefreshToken != "r" {
			t.Errorf("unexpected payload: %+v", refreshed)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Publish(RefreshFailed{Err: errors.New("boom")})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if _, ok := ev.(RefreshFailed); !ok {
				t.Errorf("subscriber %d received %T, want RefreshFailed", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	_ = bus.Subscribe()

	done := make(chan struct{})
	go func() {
		for range 100 {
			bus.Publish(ConfigUpdated{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(ConfigUpdated{})
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	bus.Publish(ConfigUpdated{})

	late := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing after Close should yield a closed channel")
	}
}
