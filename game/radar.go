package game

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"orbitfire/sim"
	"orbitfire/vmath"
)

// Radar is the corner minimap centred on the viewer's home planet
type Radar struct {
	radius float64
	scale  float64 // radar pixels per world unit
}

// NewRadar creates a radar showing worldRange units from its center to its rim
func NewRadar(radius, worldRange float64) *Radar {
	return &Radar{radius: radius, scale: radius / worldRange}
}

// project maps a world offset from the radar center to radar coordinates.
// Offsets beyond the range sit on the rim; clamped reports that case.
func (r *Radar) project(offset vmath.Vec2) (vmath.Vec2, bool) {
	p := offset.Scale(r.scale)
	limit := r.radius - radarEdgeMargin
	if d := p.Length(); d > limit {
		return p.Scale(limit / d), true
	}
	return p, false
}

// Draw renders the radar in the top-right corner of the screen
func (r *Radar) Draw(screen *ebiten.Image, w *sim.World, viewer sim.PlayerID) {
	player, ok := w.Player(viewer)
	if !ok {
		return
	}
	origin := w.Center()
	if home, ok := w.Planet(player.Home); ok {
		origin = home.Position()
	}

	bounds := screen.Bounds()
	center := vmath.V(float64(bounds.Dx())-r.radius-radarMargin, r.radius+radarMargin)
	cx, cy := float32(center.X), float32(center.Y)

	vector.DrawFilledCircle(screen, cx, cy, float32(r.radius+radarEdgeMargin), colorRadarBackdrop, true)
	vector.StrokeCircle(screen, cx, cy, float32(r.radius), 1, colorRadarRing, true)

	// Home radar coverage as a ring
	coverage := w.Config().HomeRadarRange * r.scale
	if coverage < r.radius {
		vector.StrokeCircle(screen, cx, cy, float32(coverage), 1, colorRadarCoverage, true)
	}

	for _, p := range w.Planets() {
		if !p.IsAlive() {
			continue
		}
		pos, clamped := r.project(p.Position().Sub(origin))
		size := math.Max(radarBlipSize, p.Radius*r.scale)
		if clamped {
			size = radarBlipSize
		}
		vector.DrawFilledCircle(screen, cx+float32(pos.X), cy+float32(pos.Y), float32(size), p.Color, true)
	}

	for _, p := range w.Projectiles() {
		if !p.IsAlive() {
			continue
		}
		if p.Owner != viewer && !w.RadarCovers(viewer, p.Pos) {
			continue
		}
		pos, clamped := r.project(p.Pos.Sub(origin))
		if clamped {
			continue
		}
		clr := colorRadarShot
		if p.Owner == viewer {
			clr = colorRadarPlayer
		}
		vector.DrawFilledRect(screen, cx+float32(pos.X)-1, cy+float32(pos.Y)-1, 2, 2, clr, false)
	}

	vector.DrawFilledCircle(screen, cx, cy, 1.5, colorRadarPlayer, true)
}
