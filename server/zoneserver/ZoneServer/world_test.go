package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSpawnAssignsIDAndFiresHooks(t *testing.T) {
	w := NewWorld(World1, "test")
	var seen []EntityKind
	w.OnEntitySpawned(func(e Entity) { seen = append(seen, e.Kind()) })

	c := w.Spawn(NewCatapult(Position{}))
	m := w.Spawn(NewMob("Rift Wolf", 42, 210, Position{}))

	if c.ID() == uuid.Nil || m.ID() == uuid.Nil || c.ID() == m.ID() {
		t.Fatalf("bad ids %s %s", c.ID(), m.ID())
	}
	if len(seen) != 2 || seen[0] != KindCatapult || seen[1] != KindMob {
		t.Fatalf("hooks saw %v", seen)
	}
	if got, ok := w.Get(c.ID()); !ok || got != c {
		t.Fatalf("Get(%s)=%v,%v", c.ID(), got, ok)
	}
}

func TestUnsubscribeStopsHook(t *testing.T) {
	w := NewWorld(World1, "test")
	calls := 0
	other := 0
	unsubscribe := w.OnEntitySpawned(func(Entity) { calls++ })
	w.OnEntitySpawned(func(Entity) { other++ })

	w.Spawn(NewCatapult(Position{}))
	unsubscribe()
	unsubscribe()
	w.Spawn(NewCatapult(Position{}))

	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
	if other != 2 {
		t.Fatalf("other=%d want 2", other)
	}
}

func TestDespawnInvalidatesEntity(t *testing.T) {
	w := NewWorld(World1, "test")
	a := w.Spawn(NewCatapult(Position{}))
	b := w.Spawn(NewBallistaGun(Position{}))

	if !w.Despawn(a.ID()) {
		t.Fatalf("despawn failed")
	}
	if w.Despawn(a.ID()) {
		t.Fatalf("second despawn succeeded")
	}
	if !a.Destroyed() {
		t.Fatalf("entity not marked destroyed")
	}

	live := w.Entities()
	if len(live) != 1 || live[0] != b {
		t.Fatalf("entities=%v want only ballista", live)
	}
	if w.Count() != 1 {
		t.Fatalf("count=%d want 1", w.Count())
	}
}

func TestEntitiesKeepsSpawnOrder(t *testing.T) {
	w := NewWorld(World1, "test")
	n := seedWorldEntities(w, SeedConfig{Catapults: 2, Ballistas: 1, Rams: 1, Mobs: 3})
	if n != 7 {
		t.Fatalf("seeded=%d want 7", n)
	}

	want := []EntityKind{KindCatapult, KindCatapult, KindBallistaGun, KindBatteringRam, KindMob, KindMob, KindMob}
	got := w.Entities()
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Kind() != want[i] {
			t.Fatalf("entities[%d]=%s want %s", i, e.Kind(), want[i])
		}
	}
	if got[6].(*MobEntity).Name != "Rift Wolf" {
		t.Fatalf("third mob=%q want Rift Wolf", got[6].(*MobEntity).Name)
	}
}

func TestPostRunsOnTick(t *testing.T) {
	w := NewWorld(World1, "test")
	ran := 0
	w.Post(func() { ran++ })
	w.Post(func() { ran++ })
	if ran != 0 {
		t.Fatalf("posted hooks ran early")
	}

	w.Tick(time.Now())
	if ran != 2 {
		t.Fatalf("ran=%d want 2", ran)
	}
	if n := w.RunPending(); n != 0 {
		t.Fatalf("pending=%d want 0", n)
	}
}

func TestTickFiresReadyLaunchers(t *testing.T) {
	w := NewWorld(World1, "test")
	seedWorldEntities(w, SeedConfig{Catapults: 1, Ballistas: 1, Rams: 1})

	t0 := time.Unix(1_700_000_000, 0)
	if fired := w.Tick(t0); fired != 2 {
		t.Fatalf("fired=%d want 2", fired)
	}
	if fired := w.Tick(t0.Add(4 * time.Second)); fired != 1 {
		t.Fatalf("fired=%d want 1 (ballista only)", fired)
	}
	if fired := w.Tick(t0.Add(6 * time.Second)); fired != 1 {
		t.Fatalf("fired=%d want 1 (catapult only)", fired)
	}
}

func TestDefaultSpawnPosition(t *testing.T) {
	if p := DefaultSpawnPosition(World2); p.X != 500 || p.Z != 500 {
		t.Fatalf("world2 spawn=%+v", p)
	}
	if p := DefaultSpawnPosition(WorldID(99)); p != (Position{}) {
		t.Fatalf("unknown world spawn=%+v", p)
	}
}
