package game

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"orbitfire/sim"
	"orbitfire/vmath"
)

func newTestMatch(t *testing.T) (*sim.World, *sim.Player) {
	t.Helper()
	w := sim.NewWorld(sim.DefaultConfig(), nil)
	planets, err := w.Populate(vmath.Vec2{}, sim.DefaultSystem())
	if err != nil {
		t.Fatal(err)
	}
	player, err := w.AddPlayer("you", planets[1].ID, true)
	if err != nil {
		t.Fatal(err)
	}
	return w, player
}

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(800, 600)
	c.X, c.Y = 100, -50
	c.ZoomBy(2)

	sx, sy := c.WorldToScreen(vmath.V(100, -50))
	if sx != 400 || sy != 300 {
		t.Fatalf("camera center maps to (%v, %v)", sx, sy)
	}

	p := vmath.V(130, 20)
	sx, sy = c.WorldToScreen(p)
	if back := c.ScreenToWorld(sx, sy); back.Distance(p) > 1e-9 {
		t.Fatalf("round trip = %v, want %v", back, p)
	}

	for i := 0; i < 50; i++ {
		c.ZoomBy(zoomStep)
	}
	if c.Zoom != maxZoom {
		t.Fatalf("zoom = %v, want clamp at %v", c.Zoom, maxZoom)
	}
}

func TestCommandApply(t *testing.T) {
	w, player := newTestMatch(t)
	home, _ := w.Planet(player.Home)
	target := home.Position().Add(vmath.V(100, 0))

	cmd := Command{Aim: target, Select: 1, SpeedDelta: -1000, Fire: true}
	shot := cmd.Apply(w, player.ID)
	if shot == nil {
		t.Fatal("no shot fired")
	}
	if shot.Weapon != sim.WeaponTypeHeavy {
		t.Fatalf("weapon = %v", shot.Weapon)
	}
	if lo, _ := player.ShotSpeedRange(); player.ShotSpeed != lo {
		t.Fatalf("shot speed = %v, want clamp to %v", player.ShotSpeed, lo)
	}
	if player.Aim != target {
		t.Fatalf("aim = %v", player.Aim)
	}

	// Heavy is cooling down
	if again := (Command{Aim: target, Select: -1, Fire: true}).Apply(w, player.ID); again != nil {
		t.Fatal("fired during cooldown")
	}

	cmd = Command{Select: -1, Cycle: -2}
	cmd.Apply(w, player.ID)
	if player.Current != len(player.Arsenal)-1 {
		t.Fatalf("current = %d", player.Current)
	}

	if shot := (Command{Select: -1, Fire: true}).Apply(w, player.ID+5); shot != nil {
		t.Fatal("unknown player fired")
	}
}

func TestCommandDetonate(t *testing.T) {
	w, player := newTestMatch(t)
	home, _ := w.Planet(player.Home)

	fire := Command{Aim: home.Position().Add(vmath.V(0, 80)), Select: 2, Fire: true}
	if shot := fire.Apply(w, player.ID); shot == nil || shot.Kind != sim.KindAreaOrdnance {
		t.Fatalf("shot = %+v", shot)
	}
	(Command{Select: -1, Detonate: true}).Apply(w, player.ID)
	if len(w.Explosions()) != 1 {
		t.Fatalf("explosions = %d", len(w.Explosions()))
	}
}

func TestRadarProject(t *testing.T) {
	r := NewRadar(100, 1000)

	p, clamped := r.project(vmath.V(500, 0))
	if clamped || p.X != 50 || p.Y != 0 {
		t.Fatalf("project = %v, %v", p, clamped)
	}

	p, clamped = r.project(vmath.V(0, -5000))
	if !clamped {
		t.Fatal("far offset not clamped")
	}
	if math.Abs(p.Length()-(100-radarEdgeMargin)) > 1e-9 || p.Y >= 0 {
		t.Fatalf("rim point = %v", p)
	}
}

func TestStatusLines(t *testing.T) {
	w, player := newTestMatch(t)
	lines := statusLines(w, player.ID)
	if len(lines) != 4 || !strings.HasPrefix(lines[1], "resources") {
		t.Fatalf("lines = %q", lines)
	}

	home, _ := w.Planet(player.Home)
	shot := w.SpawnDrift(home.Position(), vmath.Vec2{})
	shot.Damage = home.Mass + 1
	w.ResolveCollisions([]sim.CollisionPair{{Planet: home.ID, Projectile: shot.ID}})
	w.Sweep()

	lines = statusLines(w, player.ID)
	if !strings.Contains(lines[len(lines)-1], "HOME DESTROYED") {
		t.Fatalf("lines = %q", lines)
	}

	if got := statusLines(w, player.ID+9); len(got) != 1 {
		t.Fatalf("unknown player lines = %q", got)
	}
}

func TestBlastPalette(t *testing.T) {
	palette := blastPalette(colorBlastHot, colorBlastCool, 8)
	if len(palette) != 8 {
		t.Fatalf("len = %d", len(palette))
	}
	first, last := palette[0], palette[len(palette)-1]
	if first.R != colorBlastHot.R || first.G != colorBlastHot.G || first.B != colorBlastHot.B {
		t.Fatalf("first = %+v", first)
	}
	if last.R != colorBlastCool.R || last.G != colorBlastCool.G || last.B != colorBlastCool.B {
		t.Fatalf("last = %+v", last)
	}
}

func TestParticlesBurstAndExpire(t *testing.T) {
	ps := NewExplosionParticleSystem(rand.New(rand.NewSource(1)))
	ps.Burst(vmath.V(10, 10), 30, 1)
	if ps.Len() != 30 {
		t.Fatalf("len = %d", ps.Len())
	}
	ps.Update(0.1)
	if ps.Len() != 30 {
		t.Fatalf("particles died early: %d", ps.Len())
	}
	ps.Update(ps.lifetimeMax)
	if ps.Len() != 0 {
		t.Fatalf("particles outlived their lifetime: %d", ps.Len())
	}

	ps.maxParticles = 5
	ps.Burst(vmath.Vec2{}, 30, 1)
	if ps.Len() != 5 {
		t.Fatalf("cap ignored: %d", ps.Len())
	}
}

func TestStarfieldWraps(t *testing.T) {
	s := NewStarfield(rand.New(rand.NewSource(2)), 400, 300)
	c := NewCamera(400, 300)
	c.X, c.Y = 1e5, -3e4
	s.Update(c)

	half := s.span / 2
	for _, st := range s.stars {
		if math.Abs(st.pos.X) > half || math.Abs(st.pos.Y) > half {
			t.Fatalf("star escaped the field: %v", st.pos)
		}
	}
}

func TestFade(t *testing.T) {
	if got := fade(colorPreview, 0.5); got.A != 127 {
		t.Fatalf("alpha = %d", got.A)
	}
	if got := fade(colorPreview, 2); got.A != 255 {
		t.Fatalf("alpha = %d", got.A)
	}
}

func TestTrackedShotFallsBack(t *testing.T) {
	w, player := newTestMatch(t)
	if got := trackedShot(w, player.ID); got != nil {
		t.Fatalf("tracked = %+v", got)
	}

	drift := w.SpawnOpeningDrift()
	if got := trackedShot(w, player.ID); got != drift {
		t.Fatalf("tracked = %+v, want the drift shot", got)
	}

	home, _ := w.Planet(player.Home)
	fire := Command{Aim: home.Position().Add(vmath.V(0, 80)), Select: 2, Fire: true}
	shot := fire.Apply(w, player.ID)
	if shot == nil {
		t.Fatal("no ordnance fired")
	}
	if got := trackedShot(w, player.ID); got != shot {
		t.Fatalf("tracked = %+v, want own ordnance", got)
	}
}

func TestLayoutResizesCamera(t *testing.T) {
	g := &Game{cfg: DefaultConfig(), camera: NewCamera(800, 600)}

	w, h := g.Layout(1280, 720)
	if w != 1280 || h != 720 {
		t.Fatalf("layout = %dx%d", w, h)
	}
	if g.camera.Width != 1280 || g.camera.Height != 720 {
		t.Fatalf("camera = %vx%v", g.camera.Width, g.camera.Height)
	}
	sx, sy := g.camera.WorldToScreen(vmath.V(g.camera.X, g.camera.Y))
	if sx != 640 || sy != 360 {
		t.Fatalf("center maps to (%v, %v)", sx, sy)
	}

	// A minimised window keeps the configured size
	w, h = g.Layout(0, 0)
	if w != g.cfg.ScreenWidth || h != g.cfg.ScreenHeight || g.camera.Width != 1280 {
		t.Fatalf("layout = %dx%d, camera width %v", w, h, g.camera.Width)
	}
}

func TestStatsLinesShowProfiling(t *testing.T) {
	w, _ := newTestMatch(t)
	quiet := statsLines(w, Stats{})
	busy := statsLines(w, Stats{Profiling: true})
	if len(busy) != len(quiet)+1 || busy[len(busy)-1] != "capturing profile" {
		t.Fatalf("lines = %q", busy)
	}
}

func TestProfilerCapture(t *testing.T) {
	p, err := NewProfiler(t.TempDir(), 200*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsProfiling() {
		t.Fatal("profiling before any capture")
	}
	if err := p.CaptureProfile("test"); err != nil {
		t.Fatal(err)
	}
	if !p.IsProfiling() {
		t.Fatal("capture not running")
	}
	if err := p.CaptureProfile("again"); !errors.Is(err, errCaptureCooldown) {
		t.Fatalf("second capture: err = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for p.IsProfiling() {
		if time.Now().After(deadline) {
			t.Fatal("capture never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
