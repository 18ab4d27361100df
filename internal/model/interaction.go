package model

import "time"

// Interaction is one row of the audit log written on every successful interact.
type Interaction struct {
	ID        int64
	DuckID    int64
	Action    Action
	FoodType  FoodType
	Timestamp time.Time
}
