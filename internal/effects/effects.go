package effects

import (
	"math/rand/v2"
	"sync"
	"time"

	"Quackito/internal/model"
)

// Emojis used for each action's burst.
var Emojis = map[model.Action][]string{
	model.ActionFeed:  {"🍪", "🍞", "✨", "🥖"},
	model.ActionPlay:  {"💛", "✨", "🎾", "💫"},
	model.ActionSleep: {"💤", "😴", "⭐", "💤"},
}

// Burst size bounds.
const (
	MinParticles = 5
	MaxParticles = 7
)

// Particle is one emoji in a burst. X is a horizontal position in percent of
// the display width; Drift is a sideways offset in columns.
type Particle struct {
	ID       uint64
	Emoji    string
	X        float64
	Delay    time.Duration
	Drift    float64
	Duration time.Duration
}

// Emitter produces particle bursts. IDs are unique per Emitter.
type Emitter struct {
	mu   sync.Mutex
	next uint64
	rnd  *rand.Rand
}

// NewEmitter creates an Emitter seeded from the clock.
func NewEmitter() *Emitter {
	return NewSeededEmitter(uint64(time.Now().UnixNano()))
}

// NewSeededEmitter creates an Emitter with a fixed seed.
func NewSeededEmitter(seed uint64) *Emitter {
	return &Emitter{rnd: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Emit returns a burst of 5 to 7 particles for the action. Unknown actions
// produce no particles.
func (e *Emitter) Emit(a model.Action) []Particle {
	emojis, ok := Emojis[a]
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := MinParticles + e.rnd.IntN(MaxParticles-MinParticles+1)
	batch := make([]Particle, n)
	for i := range batch {
		batch[i] = Particle{
			ID:       e.next,
			Emoji:    emojis[e.rnd.IntN(len(emojis))],
			X:        30 + e.rnd.Float64()*40,
			Delay:    time.Duration(e.rnd.Float64() * float64(300*time.Millisecond)),
			Drift:    (e.rnd.Float64() - 0.5) * 60,
			Duration: 1200*time.Millisecond + time.Duration(e.rnd.Float64()*float64(500*time.Millisecond)),
		}
		e.next++
	}
	return batch
}
