package main

import "fmt"

type Category int

const (
	CategoryCatapult Category = iota + 1
	CategoryBallista
)

func (c Category) String() string {
	switch c {
	case CategoryCatapult:
		return "catapult"
	case CategoryBallista:
		return "ballista"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Durations maps a weapon category to a reload time in seconds.
type Durations map[Category]float32

// SiegeWeapon is the only view of a host entity the synchronizer needs.
type SiegeWeapon interface {
	Category() Category
	SetReloadDuration(seconds float32) error
}

// reloadFieldName is the unexported field the host launchers keep their
// reload time in.
const reloadFieldName = "reloadTime"

var hostFieldWriter = newFieldWriter()

type hostSiegeWeapon struct {
	entity   Entity
	category Category
	writer   *fieldWriter
}

func (w hostSiegeWeapon) Category() Category { return w.category }

func (w hostSiegeWeapon) SetReloadDuration(seconds float32) error {
	if w.entity == nil || w.entity.Destroyed() {
		return ErrEntityInvalid
	}
	return w.writer.SetFloat32(w.entity, reloadFieldName, seconds)
}

func categoryForKind(kind EntityKind) (Category, bool) {
	switch kind {
	case KindCatapult:
		return CategoryCatapult, true
	case KindBallistaGun:
		return CategoryBallista, true
	default:
		return 0, false
	}
}

// siegeWeaponFor adapts e when its runtime kind is one of the two launcher
// categories.
func siegeWeaponFor(e Entity) (SiegeWeapon, bool) {
	if e == nil {
		return nil, false
	}
	category, ok := categoryForKind(e.Kind())
	if !ok {
		return nil, false
	}
	return hostSiegeWeapon{entity: e, category: category, writer: hostFieldWriter}, true
}
