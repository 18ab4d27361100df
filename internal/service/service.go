package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"Quackito/internal/model"
	"Quackito/internal/sim"
	"Quackito/internal/store"
)

const (
	CodeLength    = 8
	MaxNameLength = 64

	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	maxCodeAttempts = 5
)

// DuckService is the authoritative owner of duck state.
type DuckService struct {
	Store store.Store
	Now   func() time.Time
	Rand  io.Reader
}

// New creates a DuckService backed by st.
func New(st store.Store) *DuckService {
	return &DuckService{Store: st, Now: time.Now, Rand: rand.Reader}
}

// Create hatches a new duck with default stats and a fresh share code.
func (s *DuckService) Create(ctx context.Context, name string) (*model.Duck, error) {
	name = normalizeName(name)
	now := s.Now()

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		d := &model.Duck{
			Code:      code,
			Name:      name,
			Snapshot:  model.NewSnapshot(now),
			CreatedAt: now,
		}
		err = s.Store.Create(ctx, d)
		if errors.Is(err, store.ErrCodeTaken) {
			log.Printf("[WARN] duck code collision on attempt %d/%d", attempt, maxCodeAttempts)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] duck %s hatched (%s)", d.Code, d.Name)
		return d, nil
	}
	return nil, fmt.Errorf("create duck: %w after %d attempts", store.ErrCodeTaken, maxCodeAttempts)
}

// Get returns the duck with decay applied up to now. The decayed snapshot is
// written back only when decay changed it.
func (s *DuckService) Get(ctx context.Context, code string) (*model.Duck, error) {
	d, err := s.Store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if sim.Decay(d.Snapshot, s.Now()) == d.Snapshot {
		return d, nil
	}
	return s.Store.Update(ctx, code, func(d *model.Duck) (*model.Interaction, error) {
		d.Snapshot = sim.Decay(d.Snapshot, s.Now())
		return nil, nil
	})
}

// Interact applies decay and then the action to the stored duck, logging the
// interaction. Invalid actions and foods are rejected before touching storage.
func (s *DuckService) Interact(ctx context.Context, code, action, food string) (*model.Duck, error) {
	a, err := sim.ParseAction(action)
	if err != nil {
		return nil, err
	}
	var f model.FoodType
	if a == model.ActionFeed {
		if f, err = sim.ParseFood(food); err != nil {
			return nil, err
		}
	}

	d, err := s.Store.Update(ctx, code, func(d *model.Duck) (*model.Interaction, error) {
		now := s.Now()
		next, err := sim.ApplyAction(sim.Decay(d.Snapshot, now), a, f, now)
		if err != nil {
			return nil, err
		}
		d.Snapshot = next
		return &model.Interaction{Action: a, FoodType: f, Timestamp: now}, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] duck %s: %s", d.Code, describe(a, f))
	return d, nil
}

func (s *DuckService) generateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := io.ReadFull(s.Rand, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.DefaultName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}

func describe(a model.Action, f model.FoodType) string {
	if f != "" {
		return fmt.Sprintf("%s (%s)", a, f)
	}
	return string(a)
}
