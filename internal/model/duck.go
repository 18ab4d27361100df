package model

import "time"

// Default values for a freshly hatched duck.
const (
	DefaultName = "Quackito"
	DefaultStat = 80.0
	MinStat     = 0.0
	MaxStat     = 100.0
)

// Snapshot is the three-stat state of a duck at a point in time.
type Snapshot struct {
	Hunger      float64   `json:"hunger" toml:"hunger"`
	Happiness   float64   `json:"happiness" toml:"happiness"`
	Energy      float64   `json:"energy" toml:"energy"`
	LastUpdated time.Time `json:"last_updated" toml:"last_updated"`
}

// NewSnapshot returns the default snapshot stamped at now.
func NewSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Hunger:      DefaultStat,
		Happiness:   DefaultStat,
		Energy:      DefaultStat,
		LastUpdated: now,
	}
}

// Duck is a server-side persisted duck.
type Duck struct {
	ID        int64
	Code      string
	Name      string
	Snapshot  Snapshot
	CreatedAt time.Time
}
