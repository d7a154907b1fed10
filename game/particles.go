package game

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	"orbitfire/vmath"
)

// Particle represents a single particle in a particle system
type Particle struct {
	pos      vmath.Vec2 // world position
	vel      vmath.Vec2
	age      float64 // seconds
	lifetime float64 // seconds
	color    color.NRGBA
	size     float64
}

// IsAlive returns true if the particle is still alive
func (p *Particle) IsAlive() bool {
	return p.age < p.lifetime
}

// ParticleSystem holds short-lived debris from detonations and destroyed planets
type ParticleSystem struct {
	particles    []Particle
	maxParticles int
	rng          *rand.Rand

	velocityMin float64
	velocityMax float64
	lifetimeMin float64
	lifetimeMax float64
	sizeMin     float64
	sizeMax     float64

	// palette runs from the hottest to the coolest colour of a burst
	palette []color.NRGBA
}

// NewExplosionParticleSystem creates the debris system used for detonations
func NewExplosionParticleSystem(rng *rand.Rand) *ParticleSystem {
	return &ParticleSystem{
		particles:    make([]Particle, 0, 256),
		maxParticles: 2000,
		rng:          rng,
		velocityMin:  20.0,
		velocityMax:  90.0,
		lifetimeMin:  0.3,
		lifetimeMax:  1.2,
		sizeMin:      1.0,
		sizeMax:      2.5,
		palette:      blastPalette(colorBlastHot, colorBlastCool, 8),
	}
}

// blastPalette blends hot into cool in Lab space so the midtones stay bright
func blastPalette(hot, cool color.Color, steps int) []color.NRGBA {
	a, _ := colorful.MakeColor(hot)
	b, _ := colorful.MakeColor(cool)
	out := make([]color.NRGBA, steps)
	for i := range out {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		r, g, bl := a.BlendLab(b, t).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: bl, A: 255}
	}
	return out
}

// Burst emits count particles from pos, spreading in every direction. Faster
// particles take hotter colours.
func (ps *ParticleSystem) Burst(pos vmath.Vec2, count int, speedScale float64) {
	for i := 0; i < count && len(ps.particles) < ps.maxParticles; i++ {
		angle := ps.rng.Float64() * 2 * math.Pi
		t := ps.rng.Float64()
		speed := (ps.velocityMin + t*(ps.velocityMax-ps.velocityMin)) * speedScale

		idx := int((1 - t) * float64(len(ps.palette)-1))
		ps.particles = append(ps.particles, Particle{
			pos:      pos,
			vel:      vmath.V(math.Cos(angle), math.Sin(angle)).Scale(speed),
			lifetime: ps.lifetimeMin + ps.rng.Float64()*(ps.lifetimeMax-ps.lifetimeMin),
			color:    ps.palette[idx],
			size:     ps.sizeMin + ps.rng.Float64()*(ps.sizeMax-ps.sizeMin),
		})
	}
}

// Update ages and moves particles, dropping the dead ones
func (ps *ParticleSystem) Update(dt float64) {
	live := ps.particles[:0]
	for _, p := range ps.particles {
		p.age += dt
		p.pos = p.pos.Add(p.vel.Scale(dt))
		if p.IsAlive() {
			live = append(live, p)
		}
	}
	ps.particles = live
}

// Len returns the number of live particles
func (ps *ParticleSystem) Len() int {
	return len(ps.particles)
}

// Draw renders all particles in the system
func (ps *ParticleSystem) Draw(screen *ebiten.Image, camera *Camera) {
	for _, p := range ps.particles {
		sx, sy := camera.WorldToScreen(p.pos)
		size := p.size * camera.Zoom
		if !camera.visible(sx, sy, size) {
			continue
		}
		// Fade with age from half opacity
		alpha := 0.5 * math.Max(0, math.Min(1, 1-p.age/p.lifetime))
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(size), fade(p.color, alpha), true)
	}
}
