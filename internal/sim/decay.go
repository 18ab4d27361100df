package sim

import (
	"time"

	"Quackito/internal/model"
)

// Decay rates in points lost per minute. Fixed for every duck.
const (
	HungerDecayPerMinute    = 0.3
	HappinessDecayPerMinute = 0.2
	EnergyDecayPerMinute    = 0.15
)

// MinDecayMinutes is the elapsed time below which Decay is a no-op.
const MinDecayMinutes = 0.1

// Decay drains each stat proportionally to the minutes elapsed since
// s.LastUpdated. Elapsed times under MinDecayMinutes (negative ones included)
// return s unchanged.
func Decay(s model.Snapshot, now time.Time) model.Snapshot {
	elapsed := now.Sub(s.LastUpdated).Minutes()
	if elapsed < MinDecayMinutes {
		return s
	}
	return model.Snapshot{
		Hunger:      Clamp(s.Hunger - HungerDecayPerMinute*elapsed),
		Happiness:   Clamp(s.Happiness - HappinessDecayPerMinute*elapsed),
		Energy:      Clamp(s.Energy - EnergyDecayPerMinute*elapsed),
		LastUpdated: now,
	}
}

// Clamp bounds v into [model.MinStat, model.MaxStat].
func Clamp(v float64) float64 {
	return min(model.MaxStat, max(model.MinStat, v))
}
