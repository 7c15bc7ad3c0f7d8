package main

func DefaultSpawnPosition(worldID WorldID) Position {
	switch worldID {
	case World1:
		return Position{X: 100, Y: 0, Z: 100}
	case World2:
		return Position{X: 500, Y: 0, Z: 500}
	case World3:
		return Position{X: 1000, Y: 0, Z: 1000}
	default:
		return Position{X: 0, Y: 0, Z: 0}
	}
}

var seedMobs = []struct {
	name  string
	level int
	maxHP int
}{
	{name: "Rift Wolf", level: 42, maxHP: 210},
	{name: "Dust Bandit", level: 46, maxHP: 245},
}

// seedWorldEntities spawns the configured starting population around the
// world's spawn point, one metre apart along X.
func seedWorldEntities(w *World, seed SeedConfig) int {
	origin := DefaultSpawnPosition(w.ID)
	offset := 0.0
	next := func() Position {
		p := origin
		p.X += offset
		offset++
		return p
	}

	total := 0
	for i := 0; i < seed.Catapults; i++ {
		w.Spawn(NewCatapult(next()))
		total++
	}
	for i := 0; i < seed.Ballistas; i++ {
		w.Spawn(NewBallistaGun(next()))
		total++
	}
	for i := 0; i < seed.Rams; i++ {
		w.Spawn(NewBatteringRam(next()))
		total++
	}
	for i := 0; i < seed.Mobs; i++ {
		m := seedMobs[i%len(seedMobs)]
		w.Spawn(NewMob(m.name, m.level, m.maxHP, next()))
		total++
	}
	return total
}
