package sim

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"Quackito/internal/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDecay_TwoHours(t *testing.T) {
	s := model.Snapshot{Hunger: 80, Happiness: 80, Energy: 80, LastUpdated: t0}
	got := Decay(s, t0.Add(120*time.Minute))
	if !approx(got.Hunger, 44) || !approx(got.Happiness, 56) || !approx(got.Energy, 62) {
		t.Errorf("unexpected decay result: %+v", got)
	}
	if !got.LastUpdated.Equal(t0.Add(120 * time.Minute)) {
		t.Errorf("expected LastUpdated to advance, got %v", got.LastUpdated)
	}
}

func TestDecay_FloorsAtZero(t *testing.T) {
	s := model.Snapshot{Hunger: 10, Happiness: 5, Energy: 1, LastUpdated: t0}
	got := Decay(s, t0.Add(24*time.Hour))
	if got.Hunger != 0 || got.Happiness != 0 || got.Energy != 0 {
		t.Errorf("expected all stats floored at 0, got %+v", got)
	}
}

func TestDecay_NoOpBelowThreshold(t *testing.T) {
	s := model.Snapshot{Hunger: 50, Happiness: 50, Energy: 50, LastUpdated: t0}
	for _, d := range []time.Duration{0, 3 * time.Second, 5999 * time.Millisecond, -time.Hour} {
		got := Decay(s, t0.Add(d))
		if got != s {
			t.Errorf("elapsed %v: expected unchanged snapshot, got %+v", d, got)
		}
	}
}

func TestDecay_Formula(t *testing.T) {
	s := model.Snapshot{Hunger: 63.5, Happiness: 12, Energy: 99, LastUpdated: t0}
	for _, minutes := range []float64{0.1, 1, 7.5, 42, 333} {
		now := t0.Add(time.Duration(minutes * float64(time.Minute)))
		got := Decay(s, now)
		want := []float64{
			math.Max(0, s.Hunger-HungerDecayPerMinute*minutes),
			math.Max(0, s.Happiness-HappinessDecayPerMinute*minutes),
			math.Max(0, s.Energy-EnergyDecayPerMinute*minutes),
		}
		have := []float64{got.Hunger, got.Happiness, got.Energy}
		for i := range want {
			if math.Abs(want[i]-have[i]) > 1e-6 || have[i] < 0 {
				t.Errorf("minutes %.1f stat %d: expected %.6f, got %.6f", minutes, i, want[i], have[i])
			}
		}
	}
}

func TestApplyAction_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		in     model.Snapshot
		action model.Action
		food   model.FoodType
		want   [3]float64
	}{
		{"feed default clamps", model.Snapshot{Hunger: 80, Happiness: 80, Energy: 80}, model.ActionFeed, "", [3]float64{100, 80, 80}},
		{"feed at 95", model.Snapshot{Hunger: 95, Happiness: 50, Energy: 50}, model.ActionFeed, model.FoodBread, [3]float64{100, 50, 50}},
		{"play", model.Snapshot{Hunger: 50, Happiness: 50, Energy: 50}, model.ActionPlay, "", [3]float64{50, 70, 40}},
		{"play tired floors energy", model.Snapshot{Hunger: 50, Happiness: 90, Energy: 4}, model.ActionPlay, "", [3]float64{50, 100, 0}},
		{"sleep", model.Snapshot{Hunger: 50, Happiness: 50, Energy: 50}, model.ActionSleep, "", [3]float64{50, 50, 85}},
		{"seeds", model.Snapshot{Hunger: 10, Happiness: 10, Energy: 10}, model.ActionFeed, model.FoodSeeds, [3]float64{25, 15, 10}},
		{"berries", model.Snapshot{Hunger: 10, Happiness: 10, Energy: 10}, model.ActionFeed, model.FoodBerries, [3]float64{20, 25, 10}},
		{"food ignored for sleep", model.Snapshot{Hunger: 10, Happiness: 10, Energy: 10}, model.ActionSleep, "pizza", [3]float64{10, 10, 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.LastUpdated = t0
			now := t0.Add(time.Minute)
			got, err := ApplyAction(tt.in, tt.action, tt.food, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			have := [3]float64{got.Hunger, got.Happiness, got.Energy}
			if have != tt.want {
				t.Errorf("expected %v, got %v", tt.want, have)
			}
			if !got.LastUpdated.Equal(now) {
				t.Errorf("expected LastUpdated %v, got %v", now, got.LastUpdated)
			}
		})
	}
}

func TestApplyAction_AlwaysInRange(t *testing.T) {
	extremes := []float64{0, 0.01, 50, 99.99, 100}
	actions := []model.Action{model.ActionFeed, model.ActionPlay, model.ActionSleep}
	for _, h := range extremes {
		for _, hp := range extremes {
			for _, e := range extremes {
				for _, a := range actions {
					for food := range Foods {
						s := model.Snapshot{Hunger: h, Happiness: hp, Energy: e, LastUpdated: t0}
						got, err := ApplyAction(s, a, food, t0)
						if err != nil {
							t.Fatalf("unexpected error: %v", err)
						}
						for _, v := range []float64{got.Hunger, got.Happiness, got.Energy} {
							if v < 0 || v > 100 {
								t.Fatalf("%s on %+v produced out of range value %v", a, s, v)
							}
						}
					}
				}
			}
		}
	}
}

func TestApplyAction_KeepsLastUpdatedMonotonic(t *testing.T) {
	s := model.Snapshot{Hunger: 50, Happiness: 50, Energy: 50, LastUpdated: t0}
	got, err := ApplyAction(s, model.ActionSleep, "", t0.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.LastUpdated.Equal(t0) {
		t.Errorf("expected LastUpdated to stay at %v, got %v", t0, got.LastUpdated)
	}
}

func TestApplyAction_Invalid(t *testing.T) {
	s := model.NewSnapshot(t0)
	got, err := ApplyAction(s, model.Action("dance"), "", t0)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if got != s {
		t.Errorf("expected snapshot untouched on error")
	}
	if _, err := ApplyAction(s, model.ActionFeed, model.FoodType("pizza"), t0); !errors.Is(err, ErrInvalidFood) {
		t.Errorf("expected ErrInvalidFood, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	for _, in := range []string{"feed", "play", "sleep"} {
		if _, err := ParseAction(in); err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
		}
	}
	for _, in := range []string{"FEED", " play ", "Sleep"} {
		_, err := ParseAction(in)
		if !errors.Is(err, ErrInvalidAction) {
			t.Errorf("%q: expected ErrInvalidAction, got %v", in, err)
			continue
		}
		if !strings.Contains(err.Error(), "did you mean") {
			t.Errorf("%q: expected a hint, got %q", in, err.Error())
		}
	}
	_, err := ParseAction("fed")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "feed"`) {
		t.Errorf("expected suggestion in %q", err.Error())
	}
	_, err = ParseAction("")
	if !errors.Is(err, ErrInvalidAction) || !strings.Contains(err.Error(), "use: feed, play, sleep") {
		t.Errorf("expected usage hint, got %v", err)
	}
}

func TestParseFood(t *testing.T) {
	f, err := ParseFood("")
	if err != nil || f != model.FoodBread {
		t.Errorf("expected default bread, got %q, %v", f, err)
	}
	if f, err := ParseFood("berries"); err != nil || f != model.FoodBerries {
		t.Errorf("expected berries, got %q, %v", f, err)
	}
	if _, err := ParseFood("Berries"); !errors.Is(err, ErrInvalidFood) {
		t.Errorf("expected ErrInvalidFood for mixed case, got %v", err)
	}
	if _, err := ParseFood("seed"); !errors.Is(err, ErrInvalidFood) {
		t.Errorf("expected ErrInvalidFood, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		h, hp, e float64
		want     model.Mood
	}{
		{90, 90, 10, model.MoodSleeping},
		{10, 10, 10, model.MoodSleeping},
		{90, 90, 14.99, model.MoodSleeping},
		{90, 90, 15, model.MoodTired},
		{10, 10, 29, model.MoodTired},
		{19, 10, 30, model.MoodHungry},
		{20, 19, 30, model.MoodSad},
		{61, 61, 41, model.MoodHappy},
		{60, 90, 90, model.MoodContent},
		{90, 90, 40, model.MoodContent},
		{80, 80, 80, model.MoodHappy},
	}
	for _, tt := range tests {
		s := model.Snapshot{Hunger: tt.h, Happiness: tt.hp, Energy: tt.e}
		if got := Classify(s); got != tt.want {
			t.Errorf("{%v,%v,%v}: expected %s, got %s", tt.h, tt.hp, tt.e, tt.want, got)
		}
	}
}

func TestClassify_Total(t *testing.T) {
	valid := map[model.Mood]bool{
		model.MoodHappy: true, model.MoodContent: true, model.MoodHungry: true,
		model.MoodSad: true, model.MoodTired: true, model.MoodSleeping: true,
	}
	for h := 0.0; h <= 100; h += 5 {
		for hp := 0.0; hp <= 100; hp += 5 {
			for e := 0.0; e <= 100; e += 5 {
				if m := Classify(model.Snapshot{Hunger: h, Happiness: hp, Energy: e}); !valid[m] {
					t.Fatalf("{%v,%v,%v} classified as unknown mood %q", h, hp, e, m)
				}
			}
		}
	}
}
