package keeper

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"Quackito/internal/client"
	"Quackito/internal/localstore"
	"Quackito/internal/model"
	"Quackito/internal/sim"
)

// API is the subset of the duck server the keeper syncs with.
type API interface {
	CreateDuck(ctx context.Context, name string) (*client.Duck, error)
	GetDuck(ctx context.Context, code string) (*client.Duck, error)
	Interact(ctx context.Context, code string, action model.Action, food model.FoodType) (*client.Duck, error)
}

// Keeper owns the client's duck. Actions apply locally first; when synced the
// server's answer replaces the local guess. Every change is written to the
// local cache.
type Keeper struct {
	API       API
	CachePath string
	Name      string
	Now       func() time.Time

	mu          sync.Mutex
	snap        model.Snapshot
	code        string
	state       ConnState
	seq         uint64
	failures    int
	nextAttempt time.Time
}

// New creates a Keeper. api may be nil for a purely local duck.
func New(api API, cachePath, name string) *Keeper {
	return &Keeper{API: api, CachePath: cachePath, Name: name, Now: time.Now}
}

// Start restores the cached duck, decays it to now and makes a single attempt
// to reach the server. Being offline afterwards is not an error.
func (k *Keeper) Start(ctx context.Context) {
	k.mu.Lock()
	now := k.Now()
	cache, err := localstore.Load(k.CachePath)
	if err != nil {
		log.Printf("[WARN] local cache unreadable, starting fresh: %v", err)
		cache = &localstore.Cache{}
	}
	if cache.Snapshot != nil {
		k.snap = sim.Decay(*cache.Snapshot, now)
	} else {
		k.snap = model.NewSnapshot(now)
	}
	k.code = cache.Code
	k.state = Disconnected
	k.persist()
	k.mu.Unlock()

	if k.API != nil {
		k.connect(ctx)
	}
}

// Act applies an action optimistically and, when synced, forwards it to the
// server. It returns the snapshot the caller should display.
func (k *Keeper) Act(ctx context.Context, action, food string) (model.Snapshot, error) {
	a, err := sim.ParseAction(action)
	if err != nil {
		return k.Snapshot(), err
	}
	var f model.FoodType
	if a == model.ActionFeed {
		if f, err = sim.ParseFood(food); err != nil {
			return k.Snapshot(), err
		}
	}

	k.mu.Lock()
	now := k.Now()
	next, err := sim.ApplyAction(sim.Decay(k.snap, now), a, f, now)
	if err != nil {
		k.mu.Unlock()
		return k.Snapshot(), err
	}
	k.snap = next
	k.seq++
	seq := k.seq
	code := k.code
	online := k.state == Synced && k.API != nil
	k.persist()
	k.mu.Unlock()

	if !online {
		return next, nil
	}

	d, err := k.API.Interact(ctx, code, a, f)

	k.mu.Lock()
	defer k.mu.Unlock()
	if err != nil {
		log.Printf("[WARN] sync %s failed, keeping local result: %v", a, err)
		return k.snap, nil
	}
	if seq != k.seq {
		log.Printf("[INFO] discarding stale %s response", a)
		return k.snap, nil
	}
	k.snap = d.Snapshot
	k.persist()
	return k.snap, nil
}

// Tick re-applies decay to the local snapshot and, when offline and the
// backoff has elapsed, tries to reconnect once.
func (k *Keeper) Tick(ctx context.Context) {
	k.mu.Lock()
	now := k.Now()
	k.snap = sim.Decay(k.snap, now)
	k.persist()
	retry := k.API != nil && k.state == Disconnected && !now.Before(k.nextAttempt)
	k.mu.Unlock()

	if retry {
		k.connect(ctx)
	}
}

// Snapshot returns the currently displayed snapshot.
func (k *Keeper) Snapshot() model.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.snap
}

// Mood classifies the current snapshot.
func (k *Keeper) Mood() model.Mood {
	return sim.Classify(k.Snapshot())
}

// State reports the connection state.
func (k *Keeper) State() ConnState {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Code returns the server code, empty until a server has assigned one.
func (k *Keeper) Code() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.code
}

func (k *Keeper) connect(ctx context.Context) {
	k.mu.Lock()
	k.state = Connecting
	code := k.code
	seq := k.seq
	k.mu.Unlock()

	var d *client.Duck
	var err error
	if code != "" {
		d, err = k.API.GetDuck(ctx, code)
		if errors.Is(err, client.ErrNotFound) {
			log.Printf("[WARN] server no longer knows duck %s, hatching a new one", code)
			code = ""
		}
	}
	if code == "" {
		d, err = k.API.CreateDuck(ctx, k.Name)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.Now()
	if err != nil {
		k.state = Disconnected
		k.failures++
		k.nextAttempt = now.Add(backoff(k.failures))
		log.Printf("[WARN] duck server unreachable, playing offline (retry after %s): %v", k.nextAttempt.Format(time.TimeOnly), err)
		return
	}

	k.state = Synced
	k.failures = 0
	k.nextAttempt = time.Time{}
	k.code = d.Code
	if seq == k.seq {
		k.snap = d.Snapshot
	}
	k.persist()
	log.Printf("[INFO] synced with duck %s", d.Code)
}

// persist writes the cache; callers hold k.mu.
func (k *Keeper) persist() {
	snap := k.snap
	if err := localstore.Save(k.CachePath, &localstore.Cache{Code: k.code, Snapshot: &snap}); err != nil {
		log.Printf("[ERROR] failed to save local cache: %v", err)
	}
}
