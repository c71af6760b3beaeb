package usecase

import (
	"time"

	"github.com/polkiloo/uniformorders/internal/config"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// MeasurementScheduler picks the measurement slot assigned on approval.
type MeasurementScheduler struct {
	leadDays int
	slot     string
}

// NewMeasurementScheduler constructs MeasurementScheduler.
func NewMeasurementScheduler(leadDays int, slot string) *MeasurementScheduler {
	return &MeasurementScheduler{leadDays: leadDays, slot: slot}
}

func newMeasurementScheduler(cfg *config.Config) *MeasurementScheduler {
	return NewMeasurementScheduler(cfg.MeasurementLeadDays, cfg.MeasurementSlot)
}

// Next returns the first weekday at least leadDays after from.
func (s *MeasurementScheduler) Next(from time.Time) model.MeasurementSchedule {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()).AddDate(0, 0, s.leadDays)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return model.MeasurementSchedule{Date: day.Format(model.DateLayout), Time: s.slot}
}
