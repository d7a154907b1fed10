package game

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hajimehoshi/ebiten/v2"

	"orbitfire/collision"
	"orbitfire/script"
	"orbitfire/sim"
	"orbitfire/telemetry"
	"orbitfire/vmath"
)

// ErrNoHome is returned when the system has no planet to put the player on
var ErrNoHome = errors.New("no planet available for a home")

// Game implements ebiten.Game around a sim.World
type Game struct {
	cfg     Config
	logger  log.Logger
	metrics *telemetry.Metrics // nil disables metrics
	rng     *rand.Rand

	world    *sim.World
	detector *collision.Detector
	human    sim.PlayerID
	runner   *script.Runner
	bots     []*script.Controller

	camera    *Camera
	renderer  *Renderer
	hud       *HUD
	radar     *Radar
	reticle   *Reticle
	input     *PlayerInput
	particles *ParticleSystem
	stars     *Starfield
	profiler  *Profiler

	debug DebugState
	stats Stats
	aim   vmath.Vec2

	// FPS tracking
	fpsUpdateCounter int
	fpsUpdateTimer   float64

	slowLog        *telemetry.Throttle
	lastUpdateTime time.Time
}

// NewGame creates a new game instance. metrics may be nil.
func NewGame(cfg Config, logger log.Logger, metrics *telemetry.Metrics) (*Game, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	reticle, err := NewReticle()
	if err != nil {
		return nil, fmt.Errorf("load reticle: %w", err)
	}

	runner := script.NewRunner(0)
	if cfg.Bots > 0 && cfg.BotScript != "" {
		if err := runner.Validate(cfg.BotScript); err != nil {
			return nil, fmt.Errorf("bot script: %w", err)
		}
	}

	camera := NewCamera(float64(cfg.ScreenWidth), float64(cfg.ScreenHeight))
	g := &Game{
		cfg:            cfg,
		logger:         log.With(logger, "component", "game"),
		metrics:        metrics,
		rng:            rng,
		runner:         runner,
		camera:         camera,
		renderer:       NewRenderer(camera),
		hud:            NewHUD(),
		radar:          NewRadar(radarRadius, radarRange),
		reticle:        reticle,
		input:          NewPlayerInput(),
		particles:      NewExplosionParticleSystem(rng),
		stars:          NewStarfield(rng, camera.Width, camera.Height),
		slowLog:        telemetry.NewThrottle(slowLogInterval * time.Second),
		lastUpdateTime: time.Now(),
	}

	if cfg.Profile.Enabled {
		g.profiler, err = NewProfiler(cfg.Profile.Dir, cfg.Profile.Duration, logger)
		if err != nil {
			return nil, err
		}
	}

	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// reset throws the world away and builds a fresh one with new homes
func (g *Game) reset() error {
	world := sim.NewWorld(g.cfg.Sim, g.logger)
	planets, err := world.Populate(vmath.Vec2{}, g.cfg.system())
	if err != nil {
		return fmt.Errorf("populate world: %w", err)
	}

	homes := sim.AssignHomes(planets, 1+g.cfg.Bots, g.rng)
	if len(homes) == 0 {
		return ErrNoHome
	}
	human, err := world.AddPlayer("you", homes[0].ID, true)
	if err != nil {
		return err
	}

	bots := make([]*script.Controller, 0, len(homes)-1)
	for i, home := range homes[1:] {
		bot, err := world.AddPlayer(fmt.Sprintf("bot%d", i+1), home.ID, false)
		if err != nil {
			return err
		}
		bots = append(bots, script.NewController(g.runner, g.cfg.BotScript, bot.ID, g.cfg.BotInterval, g.logger))
	}
	if len(bots) < g.cfg.Bots {
		level.Warn(g.logger).Log("msg", "not enough planets for every bot", "wanted", g.cfg.Bots, "placed", len(bots))
	}

	world.SpawnOpeningDrift()

	g.world = world
	g.detector = collision.New()
	g.human = human.ID
	g.bots = bots
	g.camera.X, g.camera.Y = world.Center().X, world.Center().Y

	level.Info(g.logger).Log("msg", "world ready", "planets", len(planets), "home", homes[0].Name, "bots", len(bots))
	return nil
}

// World returns the running world
func (g *Game) World() *sim.World { return g.world }

// Human returns the local player's ID
func (g *Game) Human() sim.PlayerID { return g.human }

// Update advances the game by the wall time since the last frame
func (g *Game) Update() error {
	frameStart := time.Now()
	deltaTime := frameStart.Sub(g.lastUpdateTime).Seconds()
	g.lastUpdateTime = frameStart
	if deltaTime > maxFrameDelta {
		deltaTime = maxFrameDelta
	}

	cmd := g.input.Poll(g.camera)
	if cmd.Restart {
		if err := g.reset(); err != nil {
			return err
		}
	}
	g.handleView(cmd)
	g.step(cmd, time.Duration(deltaTime*float64(time.Second)))

	g.particles.Update(deltaTime)
	g.stars.Update(g.camera)
	g.updateFPS(deltaTime)
	g.checkSlowFrame(time.Since(frameStart))
	return nil
}

// handleView applies the parts of a command that only touch the presentation
func (g *Game) handleView(cmd Command) {
	if cmd.ToggleOrbits {
		g.debug.ShowOrbits = !g.debug.ShowOrbits
	}
	if cmd.ToggleRadar {
		g.debug.ShowRadar = !g.debug.ShowRadar
	}
	if cmd.ToggleStats {
		g.debug.ShowStats = !g.debug.ShowStats
	}
	if cmd.Zoom != 0 && cmd.Zoom != 1 {
		g.camera.ZoomBy(cmd.Zoom)
	}
}

// step applies player and bot commands, then advances the world one tick
func (g *Game) step(cmd Command, elapsed time.Duration) {
	g.aim = cmd.Aim
	cmd.Apply(g.world, g.human)
	for _, bot := range g.bots {
		bot.Update(g.world)
	}

	start := time.Now()
	pairs := g.world.Step(elapsed, g.detector)
	took := time.Since(start)

	events := g.world.DrainEvents()
	g.handleEvents(events)
	if g.metrics != nil {
		g.metrics.ObserveEvents(events)
		g.metrics.ObserveTick(took, g.world)
	}

	g.stats.Pairs = len(pairs)
	g.stats.Tracked = g.detector.Tracked()
	g.stats.Particle = g.particles.Len()
	g.stats.Profiling = g.profiler != nil && g.profiler.IsProfiling()
}

// handleEvents turns world events into effects
func (g *Game) handleEvents(events []sim.Event) {
	for _, e := range events {
		switch e.Kind {
		case sim.EventExplosion:
			g.particles.Burst(e.Pos, 40, e.Amount/50)
		case sim.EventPlanetDestroyed:
			g.particles.Burst(e.Pos, 80, 1.5)
		case sim.EventPlanetDamaged:
			g.particles.Burst(e.Pos, 6, 0.5)
		case sim.EventPlanetDiscovered:
			if e.Player == g.human {
				level.Info(g.logger).Log("msg", "planet discovered", "planet", uint64(e.Planet))
			}
		}
	}
}

func (g *Game) updateFPS(deltaTime float64) {
	g.fpsUpdateTimer += deltaTime
	g.fpsUpdateCounter++
	if g.fpsUpdateTimer >= 0.5 {
		g.stats.FPS = float64(g.fpsUpdateCounter) / g.fpsUpdateTimer
		g.fpsUpdateCounter = 0
		g.fpsUpdateTimer = 0
	}
}

// checkSlowFrame warns about slow frames and starts a profile capture
func (g *Game) checkSlowFrame(took time.Duration) {
	limit := g.cfg.Profile.SlowFrame
	if limit <= 0 || took < limit || !g.slowLog.Allow(time.Now()) {
		return
	}
	level.Warn(g.logger).Log(
		"msg", "slow frame",
		"took", took,
		"planets", len(g.world.Planets()),
		"projectiles", len(g.world.Projectiles()),
	)
	if g.profiler == nil {
		return
	}
	reason := fmt.Sprintf("%dms-projectiles%d", took.Milliseconds(), len(g.world.Projectiles()))
	if err := g.profiler.CaptureProfile(reason); err != nil {
		level.Debug(g.logger).Log("msg", "profile skipped", "err", err)
	}
}

// tracked returns the live preview of the shot picked by trackedShot, or nil
func (g *Game) tracked() iter.Seq[sim.Segment] {
	if p := trackedShot(g.world, g.human); p != nil {
		return g.world.LivePreview(p.ID)
	}
	return nil
}

// trackedShot picks the player's newest live ordnance, falling back to the
// oldest live projectile of any owner
func trackedShot(w *sim.World, id sim.PlayerID) *sim.Projectile {
	projectiles := w.Projectiles()
	for i := len(projectiles) - 1; i >= 0; i-- {
		p := projectiles[i]
		if p.IsAlive() && p.Owner == id && p.Kind == sim.KindAreaOrdnance {
			return p
		}
	}
	for _, p := range projectiles {
		if p.IsAlive() {
			return p
		}
	}
	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	g.stars.Draw(screen, g.camera)

	g.renderer.Render(screen, g.world, View{
		Viewer:  g.human,
		Aim:     g.world.AimPreview(g.human, g.aim),
		Tracked: g.tracked(),
		Debug:   g.debug,
	})
	g.particles.Draw(screen, g.camera)
	g.radar.Draw(screen, g.world, g.human)
	g.hud.Draw(screen, g.world, g.human, g.stats, g.debug)

	ready := false
	if player, ok := g.world.Player(g.human); ok {
		if wpn := player.CurrentWeapon(); wpn != nil {
			ready = wpn.Ready()
		}
	}
	sx, sy := g.camera.WorldToScreen(g.aim)
	g.reticle.Draw(screen, sx, sy, ready)
}

// Layout follows the window size so resizing shows more of the world
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return g.cfg.ScreenWidth, g.cfg.ScreenHeight
	}
	width, height := float64(outsideWidth), float64(outsideHeight)
	if width != g.camera.Width || height != g.camera.Height {
		g.camera.Resize(width, height)
		if g.stars != nil {
			g.stars = NewStarfield(g.rng, width, height)
		}
	}
	return outsideWidth, outsideHeight
}
