// Package collision detects planet/projectile overlaps with a chipmunk2d
// space. Bodies are kinematic and every shape is a sensor, so the space only
// reports contacts and never moves anything.
package collision

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"

	"orbitfire/sim"
)

const (
	planetType     cp.CollisionType = 1
	projectileType cp.CollisionType = 2

	planetCategory     uint = 1 << 0
	projectileCategory uint = 1 << 1

	// The space needs a non-zero step to run its broad phase. Bodies have
	// no velocity, so the value does not move anything.
	queryStep = 1.0 / 60.0
)

type tracked struct {
	body   *cp.Body
	shape  *cp.Shape
	kind   cp.CollisionType
	radius float64
	seen   uint64
}

// Detector mirrors live planets and projectiles into a cp.Space and collects
// the sensor contacts of each step. It implements sim.CollisionDetector.
type Detector struct {
	space   *cp.Space
	handler *cp.CollisionHandler
	shapes  map[sim.EntityID]*tracked
	pairs   []sim.CollisionPair
	frame   uint64
}

// New creates an empty detector
func New() *Detector {
	d := &Detector{
		space:  cp.NewSpace(),
		shapes: make(map[sim.EntityID]*tracked),
	}
	d.handler = d.space.NewCollisionHandler(planetType, projectileType)
	d.handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		return true
	}
	d.handler.PreSolveFunc = d.preSolve
	return d
}

// preSolve runs for every touching planet/projectile pair on every step.
// Returning false keeps the space from resolving the contact.
func (d *Detector) preSolve(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	a, b := arb.Shapes()
	planet, ok := a.UserData.(sim.EntityID)
	if !ok {
		return false
	}
	proj, ok := b.UserData.(sim.EntityID)
	if !ok {
		return false
	}
	if t, ok := d.shapes[planet]; ok && t.kind == projectileType {
		planet, proj = proj, planet
	}
	d.pairs = append(d.pairs, sim.CollisionPair{Planet: planet, Projectile: proj})
	return false
}

// Detect implements sim.CollisionDetector. Only live entities are mirrored, so
// pairs for dead ones are never returned. Pairs are ordered by projectile then
// planet ID, which is spawn order, so resolution does not depend on the
// space's internal hashing.
func (d *Detector) Detect(planets []*sim.Planet, projectiles []*sim.Projectile) []sim.CollisionPair {
	d.frame++
	d.pairs = d.pairs[:0]

	for _, p := range planets {
		if p.IsAlive() {
			d.sync(p.ID, planetType, p.Position().X, p.Position().Y, p.Radius)
		}
	}
	for _, p := range projectiles {
		if p.IsAlive() {
			d.sync(p.ID, projectileType, p.Pos.X, p.Pos.Y, p.Radius)
		}
	}
	d.prune()

	d.space.Step(queryStep)

	out := slices.Clone(d.pairs)
	slices.SortFunc(out, func(a, b sim.CollisionPair) int {
		return cmp.Or(cmp.Compare(a.Projectile, b.Projectile), cmp.Compare(a.Planet, b.Planet))
	})
	return out
}

// Tracked returns the number of bodies currently mirrored in the space
func (d *Detector) Tracked() int {
	return len(d.shapes)
}

func (d *Detector) sync(id sim.EntityID, kind cp.CollisionType, x, y, radius float64) {
	t, ok := d.shapes[id]
	if ok && t.radius != radius {
		d.remove(id, t)
		ok = false
	}
	if !ok {
		t = d.add(id, kind, radius)
	}
	t.body.SetPosition(cp.Vector{X: x, Y: y})
	t.seen = d.frame
}

func (d *Detector) add(id sim.EntityID, kind cp.CollisionType, radius float64) *tracked {
	body := d.space.AddBody(cp.NewKinematicBody())
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetCollisionType(kind)
	if kind == planetType {
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, planetCategory, projectileCategory))
	} else {
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, projectileCategory, planetCategory))
	}
	shape.UserData = id
	d.space.AddShape(shape)

	t := &tracked{body: body, shape: shape, kind: kind, radius: radius}
	d.shapes[id] = t
	return t
}

// prune drops bodies that were not synced this frame
func (d *Detector) prune() {
	for id, t := range d.shapes {
		if t.seen != d.frame {
			d.remove(id, t)
		}
	}
}

func (d *Detector) remove(id sim.EntityID, t *tracked) {
	d.space.RemoveShape(t.shape)
	d.space.RemoveBody(t.body)
	delete(d.shapes, id)
}

var _ sim.CollisionDetector = (*Detector)(nil)
