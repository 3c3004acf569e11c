package app

import (
	"testing"
	"time"
)

func TestCommands_DefaultTick(t *testing.T) {
	cmd := defaultTickCmd()
	if cmd == nil {
		t.Fatal("defaultTickCmd returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	msg := notifySuccessCmd("saved")()
	n, ok := msg.(AddNotificationMsg)
	if !ok {
		t.Fatalf("msg = %T, want AddNotificationMsg", msg)
	}
	if n.Type != NotificationSuccess || n.Message != "saved" {
		t.Errorf("notification = %+v", n)
	}
	if n.Duration != QuickNotificationDuration {
		t.Errorf("Duration = %v, want %v", n.Duration, QuickNotificationDuration)
	}

	msg = notifyErrorCmd("boom")()
	n = msg.(AddNotificationMsg)
	if n.Type != NotificationError || n.Duration != LongNotificationDuration {
		t.Errorf("error notification = %+v", n)
	}

	msg = notifyWarningCmd("careful")()
	n = msg.(AddNotificationMsg)
	if n.Type != NotificationWarning {
		t.Errorf("warning notification = %+v", n)
	}

	msg = notifyInfoCmd("fyi")()
	n = msg.(AddNotificationMsg)
	if n.Type != NotificationInfo {
		t.Errorf("info notification = %+v", n)
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmd := clearNotificationCmd("n1", time.Millisecond)
	if cmd == nil {
		t.Fatal("clearNotificationCmd returned nil")
	}
}
