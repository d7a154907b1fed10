package game

import (
	"image/color"
	"iter"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"orbitfire/sim"
	"orbitfire/vmath"
)

// Camera represents the viewport into the world
type Camera struct {
	X, Y   float64 // Camera position in world coordinates
	Zoom   float64 // Zoom level
	Width  float64 // Viewport width
	Height float64 // Viewport height
}

// NewCamera creates a new camera
func NewCamera(width, height float64) *Camera {
	return &Camera{
		Zoom:   1.0,
		Width:  width,
		Height: height,
	}
}

// WorldToScreen converts world coordinates to screen coordinates
func (c *Camera) WorldToScreen(p vmath.Vec2) (float64, float64) {
	sx := (p.X-c.X)*c.Zoom + c.Width/2
	sy := (p.Y-c.Y)*c.Zoom + c.Height/2
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates
func (c *Camera) ScreenToWorld(sx, sy float64) vmath.Vec2 {
	return vmath.V(
		(sx-c.Width/2)/c.Zoom+c.X,
		(sy-c.Height/2)/c.Zoom+c.Y,
	)
}

// ZoomBy multiplies the zoom by factor, clamped
func (c *Camera) ZoomBy(factor float64) {
	c.Zoom = math.Max(minZoom, math.Min(maxZoom, c.Zoom*factor))
}

// Resize updates the viewport size
func (c *Camera) Resize(width, height float64) {
	c.Width, c.Height = width, height
}

// visible reports whether a circle at screen position (sx, sy) could be on screen
func (c *Camera) visible(sx, sy, radius float64) bool {
	margin := radius + 2
	return sx >= -margin && sx <= c.Width+margin && sy >= -margin && sy <= c.Height+margin
}

// Renderer draws the world for one viewing player
type Renderer struct {
	camera *Camera
}

// NewRenderer creates a new renderer
func NewRenderer(camera *Camera) *Renderer {
	return &Renderer{
		camera: camera,
	}
}

// View is what the renderer needs besides the world
type View struct {
	Viewer  sim.PlayerID
	Aim     iter.Seq[sim.Segment] // nil draws no aim preview
	Tracked iter.Seq[sim.Segment] // live preview of a selected shot
	Debug   DebugState
}

// Render draws orbits, planets, projectiles and effects
func (r *Renderer) Render(screen *ebiten.Image, w *sim.World, view View) {
	if view.Debug.ShowOrbits {
		r.renderOrbits(screen, w)
	}
	if view.Debug.ShowRadar {
		r.renderRadarCoverage(screen, w, view.Viewer)
	}

	viewer, _ := w.Player(view.Viewer)
	for _, p := range w.Planets() {
		if !p.IsAlive() {
			continue
		}
		r.renderPlanet(screen, p, viewer)
	}

	for _, p := range w.Projectiles() {
		if !p.IsAlive() {
			continue
		}
		// Foreign shots only show up under radar coverage
		if !p.Human && !w.RadarCovers(view.Viewer, p.Pos) {
			continue
		}
		r.renderTrail(screen, p)
		r.renderProjectile(screen, p)
	}

	now := w.Now()
	for _, e := range w.Explosions() {
		r.renderExplosion(screen, e, now)
	}

	if view.Aim != nil {
		r.renderPath(screen, view.Aim, colorPreview)
	}
	if view.Tracked != nil {
		r.renderPath(screen, view.Tracked, colorLivePreview)
	}
}

func (r *Renderer) renderOrbits(screen *ebiten.Image, w *sim.World) {
	for _, p := range w.Planets() {
		if !p.IsAlive() || p.OrbitDistance < 1 {
			continue
		}
		path := p.Path()
		px, py := r.camera.WorldToScreen(path.Point(0))
		for i := 1; i <= orbitSegments; i++ {
			x, y := r.camera.WorldToScreen(path.Point(float64(i) / orbitSegments))
			vector.StrokeLine(screen, float32(px), float32(py), float32(x), float32(y), 1, colorOrbit, true)
			px, py = x, y
		}
	}
}

func (r *Renderer) renderRadarCoverage(screen *ebiten.Image, w *sim.World, id sim.PlayerID) {
	player, ok := w.Player(id)
	if !ok {
		return
	}
	if home, ok := w.Planet(player.Home); ok {
		r.strokeRange(screen, home.Position(), w.Config().HomeRadarRange)
	}
	for _, pid := range player.Discovered() {
		if p, ok := w.Planet(pid); ok && p.RadarRange > 0 {
			r.strokeRange(screen, p.Position(), p.RadarRange)
		}
	}
}

func (r *Renderer) strokeRange(screen *ebiten.Image, center vmath.Vec2, radius float64) {
	cx, cy := r.camera.WorldToScreen(center)
	vector.StrokeCircle(screen, float32(cx), float32(cy), float32(radius*r.camera.Zoom), 1, colorRadarCoverage, true)
}

// renderPlanet draws a planet and, when its health is known to the viewer, a health bar
func (r *Renderer) renderPlanet(screen *ebiten.Image, p *sim.Planet, viewer *sim.Player) {
	sx, sy := r.camera.WorldToScreen(p.Position())
	radius := math.Max(1, p.Radius*r.camera.Zoom)
	if !r.camera.visible(sx, sy, radius) {
		return
	}

	vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(radius), p.Color, true)

	home := viewer != nil && viewer.Home == p.ID
	if home {
		vector.StrokeCircle(screen, float32(sx), float32(sy), float32(radius+3), 1.5, colorHomeRing, true)
	}

	known := home || (viewer != nil && viewer.HasDiscovered(p.ID))
	if !known || p.Type == sim.PlanetTypeSun || p.HealthFraction() >= 1 {
		return
	}
	barWidth := radius * 2
	barX := sx - barWidth/2
	barY := sy - radius - healthBarHeight - healthBarGap
	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth), healthBarHeight, colorHealthBack, true)
	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth*p.HealthFraction()), healthBarHeight, colorHealthFront, true)
}

// renderTrail fades the trail from transparent (oldest) to trailAlpha (newest)
func (r *Renderer) renderTrail(screen *ebiten.Image, p *sim.Projectile) {
	points := p.Trail.Points()
	if len(points) < 2 {
		return
	}
	for i := 1; i < len(points); i++ {
		x1, y1 := r.camera.WorldToScreen(points[i-1])
		x2, y2 := r.camera.WorldToScreen(points[i])
		clr := fade(p.Color, trailAlpha*float64(i)/float64(len(points)))
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, clr, true)
	}
}

func (r *Renderer) renderProjectile(screen *ebiten.Image, p *sim.Projectile) {
	sx, sy := r.camera.WorldToScreen(p.Pos)
	radius := math.Max(1, p.Radius*r.camera.Zoom)
	if !r.camera.visible(sx, sy, radius) {
		return
	}
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(radius), p.Color, true)
}

// renderExplosion draws an expanding ring that fades over the explosion's lifetime
func (r *Renderer) renderExplosion(screen *ebiten.Image, e sim.Explosion, now time.Duration) {
	progress := e.Progress(now)
	sx, sy := r.camera.WorldToScreen(e.Pos)
	radius := e.Radius * r.camera.Zoom * (0.5 + 0.5*progress)
	clr := fade(colorBlastHot, 1-progress)
	vector.StrokeCircle(screen, float32(sx), float32(sy), float32(radius), 2, clr, true)
}

// renderPath draws a predicted path with each segment's alpha taken from its weight
func (r *Renderer) renderPath(screen *ebiten.Image, path iter.Seq[sim.Segment], clr color.NRGBA) {
	for seg := range path {
		x1, y1 := r.camera.WorldToScreen(seg.Start)
		x2, y2 := r.camera.WorldToScreen(seg.End)
		c := clr
		c.A = uint8(float64(clr.A) * previewAlpha * seg.Weight)
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, c, true)
	}
}

// fade returns clr with its alpha scaled by f in [0, 1]
func fade(clr color.Color, f float64) color.NRGBA {
	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	f = math.Max(0, math.Min(1, f))
	n.A = uint8(float64(n.A) * f)
	return n
}
