package sim

import "Quackito/internal/model"

// Classify derives the display mood. Energy-based moods win over hunger and
// happiness ones.
func Classify(s model.Snapshot) model.Mood {
	switch {
	case s.Energy < 15:
		return model.MoodSleeping
	case s.Energy < 30:
		return model.MoodTired
	case s.Hunger < 20:
		return model.MoodHungry
	case s.Happiness < 20:
		return model.MoodSad
	case s.Hunger > 60 && s.Happiness > 60 && s.Energy > 40:
		return model.MoodHappy
	default:
		return model.MoodContent
	}
}
