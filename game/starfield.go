package game

import (
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"orbitfire/vmath"
)

type star struct {
	pos   vmath.Vec2 // screen-space offset from the field center
	depth float64    // parallax factor in (0, 1]
}

// Starfield is a parallax backdrop that wraps on a torus around the camera
type Starfield struct {
	stars      []star
	span       float64
	lastCamera vmath.Vec2
}

// NewStarfield scatters stars over a square a bit larger than the screen
func NewStarfield(rng *rand.Rand, width, height float64) *Starfield {
	span := math.Hypot(width, height) * starSpanMultiplier
	s := &Starfield{
		stars: make([]star, starCount),
		span:  span,
	}
	for i := range s.stars {
		s.stars[i] = star{
			pos:   vmath.V((rng.Float64()-0.5)*span, (rng.Float64()-0.5)*span),
			depth: 0.2 + rng.Float64()*0.8,
		}
	}
	return s
}

// Update moves stars against camera motion
func (s *Starfield) Update(camera *Camera) {
	cam := vmath.V(camera.X, camera.Y)
	delta := cam.Sub(s.lastCamera)
	s.lastCamera = cam

	half := s.span * 0.5
	for i := range s.stars {
		st := &s.stars[i]
		st.pos = st.pos.Sub(delta.Scale(st.depth * starParallax))
		st.pos.X = wrap(st.pos.X, half, s.span)
		st.pos.Y = wrap(st.pos.Y, half, s.span)
	}
}

// wrap keeps v inside [-half, half]
func wrap(v, half, span float64) float64 {
	for v < -half {
		v += span
	}
	for v > half {
		v -= span
	}
	return v
}

// Draw renders the stars around the screen center
func (s *Starfield) Draw(screen *ebiten.Image, camera *Camera) {
	cx, cy := camera.Width/2, camera.Height/2
	for _, st := range s.stars {
		x, y := cx+st.pos.X, cy+st.pos.Y
		if x < 0 || y < 0 || x > camera.Width || y > camera.Height {
			continue
		}
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(0.5+st.depth), fade(colorStar, st.depth), false)
	}
}
