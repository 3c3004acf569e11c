package format

import (
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"Zero", 0, "$0.00"},
		{"Cents", 0.42, "$0.42"},
		{"SubCent", 0.000420, "$0.000420"},
		{"Whole", 12.5, "$12.50"},
		{"Thousands", 1234.56, "$1,234.56"},
		{"Millions", 1234567.89, "$1,234,567.89"},
		{"Negative", -42.1, "$-42.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.v); got != tt.want {
				t.Errorf("Currency(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"Small", 950, "950"},
		{"Thousands", 1500, "1.5K"},
		{"RoundThousands", 2000, "2K"},
		{"Millions", 2_300_000, "2.3M"},
		{"Billions", 1_200_000_000, "1.2B"},
		{"Zero", 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Number(tt.v); got != tt.want {
				t.Errorf("Number(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestLatency(t *testing.T) {
	tests := []struct {
		name string
		ms   float64
		want string
	}{
		{"Millis", 950, "950ms"},
		{"Seconds", 1500, "1.50s"},
		{"Zero", 0, "0ms"},
		{"Boundary", 999, "999ms"},
		{"ExactSecond", 1000, "1.00s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Latency(tt.ms); got != tt.want {
				t.Errorf("Latency(%v) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestLatency_Deterministic(t *testing.T) {
	for range 3 {
		if got := Latency(1500); got != "1.50s" {
			t.Fatalf("Latency(1500) = %q, want 1.50s", got)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"Zero", 0, "0.0%"},
		{"Half", 52.35, "52.3%"},
		{"Full", 100, "100.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.v); got != tt.want {
				t.Errorf("Percentage(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{"Small", 7, "7"},
		{"Thousands", 1500, "1,500"},
		{"Millions", 1234567, "1,234,567"},
		{"Negative", -4200, "-4,200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.n); got != tt.want {
				t.Errorf("Count(%v) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"Zero", time.Time{}, "never"},
		{"JustNow", now.Add(-10 * time.Second), "just now"},
		{"Minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"Hours", now.Add(-3 * time.Hour), "3h ago"},
		{"Days", now.Add(-48 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.t); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeTime_OldDate(t *testing.T) {
	old := time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)
	if got := RelativeTime(old); got != "Mar 15, 2020" {
		t.Errorf("RelativeTime(old) = %q, want Mar 15, 2020", got)
	}
}
