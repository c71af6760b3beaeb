package usecase

import (
	"testing"
	"time"

	"github.com/polkiloo/uniformorders/internal/config"
)

func TestMeasurementSchedulerNext(t *testing.T) {
	scheduler := NewMeasurementScheduler(3, "09:00")
	cases := []struct {
		name string
		from time.Time
		want string
	}{
		{name: "monday lands on thursday", from: time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), want: "2025-06-05"},
		{name: "wednesday lands on saturday", from: time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC), want: "2025-06-09"},
		{name: "thursday lands on sunday", from: time.Date(2025, 6, 5, 23, 59, 0, 0, time.UTC), want: "2025-06-09"},
		{name: "friday lands on monday", from: time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), want: "2025-06-09"},
		{name: "across month end", from: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC), want: "2025-07-03"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scheduler.Next(tc.from)
			if got.Date != tc.want || got.Time != "09:00" {
				t.Fatalf("expected %s 09:00, got %+v", tc.want, got)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("schedule must be well formed: %v", err)
			}
		})
	}
}

func TestNewMeasurementSchedulerUsesConfig(t *testing.T) {
	scheduler := newMeasurementScheduler(&config.Config{MeasurementLeadDays: 1, MeasurementSlot: "13:30"})
	got := scheduler.Next(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	if got.Date != "2025-06-03" || got.Time != "13:30" {
		t.Fatalf("unexpected schedule %+v", got)
	}
}
