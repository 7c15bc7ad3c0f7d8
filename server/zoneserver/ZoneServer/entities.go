package main

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	KindCatapult     EntityKind = "catapult"
	KindBallistaGun  EntityKind = "ballista_gun"
	KindBatteringRam EntityKind = "battering_ram"
	KindMob          EntityKind = "mob"
)

// Factory tuning baked into the siege entity types.
const (
	catapultReloadTime     float32 = 6
	ballistaGunReloadTime  float32 = 3
	batteringRamReloadTime float32 = 4
)

// Entity is a live object owned by a World.
type Entity interface {
	ID() uuid.UUID
	Kind() EntityKind
	Destroyed() bool
}

type hostEntity interface {
	Entity
	base() *baseEntity
}

type Position struct {
	X float64
	Y float64
	Z float64
}

type baseEntity struct {
	id        uuid.UUID
	Position  Position
	destroyed bool
}

func (b *baseEntity) ID() uuid.UUID     { return b.id }
func (b *baseEntity) Destroyed() bool   { return b.destroyed }
func (b *baseEntity) base() *baseEntity { return b }

// Catapult is a heavy siege engine. Its reload time has no public setter.
type Catapult struct {
	baseEntity
	reloadTime float32
	nextFireAt time.Time
}

func NewCatapult(pos Position) *Catapult {
	return &Catapult{baseEntity: baseEntity{Position: pos}, reloadTime: catapultReloadTime}
}

func (c *Catapult) Kind() EntityKind    { return KindCatapult }
func (c *Catapult) ReloadTime() float32 { return c.reloadTime }
func (c *Catapult) Ready(now time.Time) bool {
	return !c.destroyed && !now.Before(c.nextFireAt)
}

func (c *Catapult) Fire(now time.Time) bool {
	if !c.Ready(now) {
		return false
	}
	c.nextFireAt = now.Add(secondsToDuration(c.reloadTime))
	return true
}

// BallistaGun is a repeating ballista. Same reload contract as Catapult.
type BallistaGun struct {
	baseEntity
	reloadTime float32
	nextFireAt time.Time
}

func NewBallistaGun(pos Position) *BallistaGun {
	return &BallistaGun{baseEntity: baseEntity{Position: pos}, reloadTime: ballistaGunReloadTime}
}

func (b *BallistaGun) Kind() EntityKind    { return KindBallistaGun }
func (b *BallistaGun) ReloadTime() float32 { return b.reloadTime }
func (b *BallistaGun) Ready(now time.Time) bool {
	return !b.destroyed && !now.Before(b.nextFireAt)
}

func (b *BallistaGun) Fire(now time.Time) bool {
	if !b.Ready(now) {
		return false
	}
	b.nextFireAt = now.Add(secondsToDuration(b.reloadTime))
	return true
}

// BatteringRam shares the field name with the launchers but is not one.
type BatteringRam struct {
	baseEntity
	reloadTime float32
}

func NewBatteringRam(pos Position) *BatteringRam {
	return &BatteringRam{baseEntity: baseEntity{Position: pos}, reloadTime: batteringRamReloadTime}
}

func (r *BatteringRam) Kind() EntityKind    { return KindBatteringRam }
func (r *BatteringRam) ReloadTime() float32 { return r.reloadTime }

type MobEntity struct {
	baseEntity
	Name  string
	Level int
	HP    int
	MaxHP int
}

func NewMob(name string, level, maxHP int, pos Position) *MobEntity {
	return &MobEntity{
		baseEntity: baseEntity{Position: pos},
		Name:       name,
		Level:      level,
		HP:         maxHP,
		MaxHP:      maxHP,
	}
}

func (m *MobEntity) Kind() EntityKind { return KindMob }

func secondsToDuration(s float32) time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}
