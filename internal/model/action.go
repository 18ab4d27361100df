package model

// Action is a discrete user-triggered stat delta.
type Action string

const (
	ActionFeed  Action = "feed"
	ActionPlay  Action = "play"
	ActionSleep Action = "sleep"
)

// FoodType selects the feed variant. Empty means the default food.
type FoodType string

const (
	FoodBread   FoodType = "bread"
	FoodSeeds   FoodType = "seeds"
	FoodBerries FoodType = "berries"
)

// Mood is a derived display classification of a snapshot.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodContent  Mood = "content"
	MoodHungry   Mood = "hungry"
	MoodSad      Mood = "sad"
	MoodTired    Mood = "tired"
	MoodSleeping Mood = "sleeping"
)
