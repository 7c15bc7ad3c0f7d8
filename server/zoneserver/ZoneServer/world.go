package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type WorldID int

const (
	World1 WorldID = 1 // Level 1–50 (Open)
	World2 WorldID = 2 // Level 51–100 (Locked by quest)
	World3 WorldID = 3 // Level 101+ Aura (Locked by quest)
)

type spawnHook struct {
	id int
	fn func(Entity)
}

// World owns the live entity population of one zone. Hooks registered with
// OnEntitySpawned run synchronously inside Spawn.
type World struct {
	ID   WorldID
	Name string

	mu         sync.RWMutex
	entities   map[uuid.UUID]hostEntity
	order      []uuid.UUID
	spawnHooks []spawnHook
	nextHookID int

	pendingMu sync.Mutex
	pending   []func()
}

func NewWorld(id WorldID, name string) *World {
	return &World{
		ID:       id,
		Name:     name,
		entities: make(map[uuid.UUID]hostEntity),
	}
}

func (w *World) Spawn(e hostEntity) Entity {
	b := e.base()
	b.id = uuid.New()
	b.destroyed = false

	w.mu.Lock()
	w.entities[b.id] = e
	w.order = append(w.order, b.id)
	hooks := make([]spawnHook, len(w.spawnHooks))
	copy(hooks, w.spawnHooks)
	w.mu.Unlock()

	for _, h := range hooks {
		h.fn(e)
	}
	return e
}

func (w *World) Despawn(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	e.base().destroyed = true
	delete(w.entities, id)
	for i, cur := range w.order {
		if cur == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

func (w *World) Get(id uuid.UUID) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// Entities returns a snapshot of live entities in spawn order.
func (w *World) Entities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]Entity, 0, len(w.order))
	for _, id := range w.order {
		result = append(result, w.entities[id])
	}
	return result
}

func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// OnEntitySpawned registers fn for every future Spawn. The returned func
// removes the registration and is safe to call more than once.
func (w *World) OnEntitySpawned(fn func(Entity)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextHookID++
	id := w.nextHookID
	w.spawnHooks = append(w.spawnHooks, spawnHook{id: id, fn: fn})

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, h := range w.spawnHooks {
			if h.id == id {
				w.spawnHooks = append(w.spawnHooks[:i], w.spawnHooks[i+1:]...)
				return
			}
		}
	}
}

// Post queues fn to run on the simulation goroutine during the next Tick.
func (w *World) Post(fn func()) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending = append(w.pending, fn)
}

func (w *World) RunPending() int {
	w.pendingMu.Lock()
	queued := w.pending
	w.pending = nil
	w.pendingMu.Unlock()

	for _, fn := range queued {
		fn()
	}
	return len(queued)
}

// Tick drains queued hooks and then lets every ready launcher fire once.
func (w *World) Tick(now time.Time) int {
	w.RunPending()

	fired := 0
	for _, e := range w.Entities() {
		switch weapon := e.(type) {
		case *Catapult:
			if weapon.Fire(now) {
				fired++
			}
		case *BallistaGun:
			if weapon.Fire(now) {
				fired++
			}
		}
	}
	return fired
}
