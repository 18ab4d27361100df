package sim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Quackito/internal/model"

	"github.com/agnivade/levenshtein"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidFood   = errors.New("invalid food type")
)

// Effect is the stat delta applied by one action.
type Effect struct {
	Hunger    float64
	Happiness float64
	Energy    float64
}

// Effects maps the non-feed actions to their fixed deltas. Feed goes through Foods.
var Effects = map[model.Action]Effect{
	model.ActionPlay:  {Happiness: 20, Energy: -10},
	model.ActionSleep: {Energy: 35},
}

// Foods maps each feed variant to its delta. Bread matches the plain feed.
var Foods = map[model.FoodType]Effect{
	model.FoodBread:   {Hunger: 25},
	model.FoodSeeds:   {Hunger: 15, Happiness: 5},
	model.FoodBerries: {Hunger: 10, Happiness: 15},
}

// DefaultFood is used when feed is requested without a food type.
const DefaultFood = model.FoodBread

var (
	actionNames = []string{string(model.ActionFeed), string(model.ActionPlay), string(model.ActionSleep)}
	foodNames   = []string{string(model.FoodBread), string(model.FoodSeeds), string(model.FoodBerries)}
)

// ParseAction validates a wire action name. Names match exactly; "Feed" is
// rejected with a hint.
func ParseAction(name string) (model.Action, error) {
	a := model.Action(name)
	switch a {
	case model.ActionFeed, model.ActionPlay, model.ActionSleep:
		return a, nil
	}
	return "", invalid(ErrInvalidAction, name, actionNames)
}

// ParseFood validates a wire food type. Empty resolves to DefaultFood.
func ParseFood(name string) (model.FoodType, error) {
	f := model.FoodType(name)
	if f == "" {
		return DefaultFood, nil
	}
	if _, ok := Foods[f]; ok {
		return f, nil
	}
	return "", invalid(ErrInvalidFood, name, foodNames)
}

// EffectOf resolves the delta for an action. food is only consulted for feed.
func EffectOf(a model.Action, food model.FoodType) (Effect, error) {
	if a == model.ActionFeed {
		if food == "" {
			food = DefaultFood
		}
		e, ok := Foods[food]
		if !ok {
			return Effect{}, invalid(ErrInvalidFood, string(food), foodNames)
		}
		return e, nil
	}
	e, ok := Effects[a]
	if !ok {
		return Effect{}, invalid(ErrInvalidAction, string(a), actionNames)
	}
	return e, nil
}

// ApplyAction adds the action's deltas to s, clamps every stat and stamps
// LastUpdated with now. LastUpdated never moves backwards.
func ApplyAction(s model.Snapshot, a model.Action, food model.FoodType, now time.Time) (model.Snapshot, error) {
	e, err := EffectOf(a, food)
	if err != nil {
		return s, err
	}
	out := model.Snapshot{
		Hunger:      Clamp(s.Hunger + e.Hunger),
		Happiness:   Clamp(s.Happiness + e.Happiness),
		Energy:      Clamp(s.Energy + e.Energy),
		LastUpdated: s.LastUpdated,
	}
	if now.After(out.LastUpdated) {
		out.LastUpdated = now
	}
	return out, nil
}

func invalid(sentinel error, got string, valid []string) error {
	msg := fmt.Sprintf("%q, use: %s", got, strings.Join(valid, ", "))
	if s := suggest(got, valid); s != "" {
		msg = fmt.Sprintf("%q, did you mean %q?", got, s)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// suggest returns the closest valid name within a small edit distance.
func suggest(got string, valid []string) string {
	got = strings.ToLower(strings.TrimSpace(got))
	if got == "" {
		return ""
	}
	best, bestDist := "", 3
	for _, v := range valid {
		if d := levenshtein.ComputeDistance(got, v); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
