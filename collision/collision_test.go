package collision

import (
	"image/color"
	"testing"
	"time"

	"orbitfire/sim"
	"orbitfire/vmath"
)

var grey = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

func planetAt(x, y, r float64) *sim.Planet {
	p := sim.NewPlanet(sim.PlanetTypePlanet, vmath.Vec2{}, 0, r, 0, grey)
	p.SetPosition(vmath.V(x, y))
	return p
}

func shotAt(x, y float64) *sim.Projectile {
	return sim.NewProjectile(sim.KindPlainShot, vmath.V(x, y), vmath.Vec2{}, grey)
}

func TestDetectOverlap(t *testing.T) {
	d := New()
	planets := []*sim.Planet{planetAt(0, 0, 10), planetAt(100, 0, 5)}
	inside := shotAt(5, 0)
	outside := shotAt(50, 0)
	projectiles := []*sim.Projectile{inside, outside}

	pairs := d.Detect(planets, projectiles)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %v", pairs)
	}
	if pairs[0] != (sim.CollisionPair{Planet: planets[0].ID, Projectile: inside.ID}) {
		t.Fatalf("pair = %+v", pairs[0])
	}
	if d.Tracked() != 4 {
		t.Fatalf("tracked = %d", d.Tracked())
	}
}

func TestDetectIgnoresSameKind(t *testing.T) {
	d := New()
	planets := []*sim.Planet{planetAt(0, 0, 10), planetAt(5, 0, 10)}
	projectiles := []*sim.Projectile{shotAt(200, 0), shotAt(200.5, 0)}

	if pairs := d.Detect(planets, projectiles); len(pairs) != 0 {
		t.Fatalf("same-kind overlaps reported: %v", pairs)
	}
}

func TestDetectFollowsMovement(t *testing.T) {
	d := New()
	planets := []*sim.Planet{planetAt(0, 0, 10)}
	shot := shotAt(50, 0)
	projectiles := []*sim.Projectile{shot}

	if pairs := d.Detect(planets, projectiles); len(pairs) != 0 {
		t.Fatalf("pairs before move = %v", pairs)
	}
	shot.Pos = vmath.V(3, 3)
	if pairs := d.Detect(planets, projectiles); len(pairs) != 1 {
		t.Fatalf("pairs after move = %v", pairs)
	}
	// Contacts persist while shapes keep touching
	if pairs := d.Detect(planets, projectiles); len(pairs) != 1 {
		t.Fatalf("pairs on second touching frame = %v", pairs)
	}
}

func TestDetectDropsDeadEntities(t *testing.T) {
	d := New()
	planets := []*sim.Planet{planetAt(0, 0, 10)}
	shot := shotAt(1, 0)
	projectiles := []*sim.Projectile{shot}

	if pairs := d.Detect(planets, projectiles); len(pairs) != 1 {
		t.Fatalf("pairs = %v", pairs)
	}
	shot.Destroy()
	if pairs := d.Detect(planets, projectiles); len(pairs) != 0 {
		t.Fatalf("dead projectile still collides: %v", pairs)
	}
	if d.Tracked() != 1 {
		t.Fatalf("tracked = %d", d.Tracked())
	}
}

func TestDetectOrderIsStable(t *testing.T) {
	d := New()
	planets := []*sim.Planet{planetAt(0, 0, 20)}
	var projectiles []*sim.Projectile
	for i := 0; i < 8; i++ {
		projectiles = append(projectiles, shotAt(float64(i+1), 0))
	}
	pairs := d.Detect(planets, projectiles)
	if len(pairs) != len(projectiles) {
		t.Fatalf("pairs = %d", len(pairs))
	}
	for i, p := range pairs {
		if p.Projectile != projectiles[i].ID {
			t.Fatalf("pair %d is projectile %d, want %d", i, p.Projectile, projectiles[i].ID)
		}
	}
}

// The detector agrees with the brute force one when driving a world
func TestDetectorDrivesWorld(t *testing.T) {
	w := sim.NewWorld(sim.DefaultConfig(), nil)
	planets, err := w.Populate(vmath.Vec2{}, sim.DefaultSystem())
	if err != nil {
		t.Fatal(err)
	}
	sun := planets[0]
	drift := w.SpawnDrift(sun.Position().Add(vmath.V(0, 5)), vmath.Vec2{})

	d := New()
	want := sim.OverlapDetector{}.Detect(w.Planets(), w.Projectiles())
	if len(want) != 1 {
		t.Fatalf("brute force pairs = %v", want)
	}
	pairs := w.Step(time.Second/60, d)
	if len(pairs) != 1 || pairs[0].Planet != sun.ID || pairs[0].Projectile != drift.ID {
		t.Fatalf("pairs = %v", pairs)
	}
	if drift.IsAlive() {
		t.Fatal("drift survived hitting the sun")
	}
}
