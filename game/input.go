package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"orbitfire/sim"
	"orbitfire/vmath"
)

// Command is one frame of player intent
type Command struct {
	Aim      vmath.Vec2 // World-space target under the cursor
	Fire     bool
	Detonate bool

	Select     int // Arsenal slot to select, or -1
	Cycle      int // Slots to move the selection by
	SpeedDelta float64

	Zoom float64 // Zoom factor; 0 or 1 leaves the camera alone

	ToggleOrbits bool
	ToggleRadar  bool
	ToggleStats  bool
	Restart      bool
}

// PlayerInput reads keyboard and mouse state into Commands
type PlayerInput struct {
	keys []ebiten.Key
}

// NewPlayerInput creates a new player input provider
func NewPlayerInput() *PlayerInput {
	return &PlayerInput{
		keys: make([]ebiten.Key, 0, 10),
	}
}

// Poll returns the command for this frame
//
//	mouse         aim
//	left click    fire
//	space         detonate ordnance
//	1-4, tab      select weapon
//	up/down, W/S  shot speed
//	wheel         zoom
//	F1-F3         debug overlays
//	R             restart
func (p *PlayerInput) Poll(camera *Camera) Command {
	p.keys = inpututil.AppendJustPressedKeys(p.keys[:0])

	mx, my := ebiten.CursorPosition()
	cmd := Command{
		Aim:    camera.ScreenToWorld(float64(mx), float64(my)),
		Fire:   inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Select: -1,
	}

	for _, k := range p.keys {
		switch k {
		case ebiten.KeySpace:
			cmd.Detonate = true
		case ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4:
			cmd.Select = int(k - ebiten.Key1)
		case ebiten.KeyTab:
			if ebiten.IsKeyPressed(ebiten.KeyShift) {
				cmd.Cycle--
			} else {
				cmd.Cycle++
			}
		case ebiten.KeyF1:
			cmd.ToggleOrbits = true
		case ebiten.KeyF2:
			cmd.ToggleRadar = true
		case ebiten.KeyF3:
			cmd.ToggleStats = true
		case ebiten.KeyR:
			cmd.Restart = true
		}
	}

	// Speed changes repeat while held
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		cmd.SpeedDelta += speedStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		cmd.SpeedDelta -= speedStep
	}

	if _, wy := ebiten.Wheel(); wy > 0 {
		cmd.Zoom = zoomStep
	} else if wy < 0 {
		cmd.Zoom = 1 / zoomStep
	}
	return cmd
}

// Apply turns a command into world calls for player id. It returns the
// projectile fired this frame, if any.
func (cmd Command) Apply(w *sim.World, id sim.PlayerID) *sim.Projectile {
	player, ok := w.Player(id)
	if !ok {
		return nil
	}
	if cmd.Select >= 0 {
		player.SelectWeapon(cmd.Select)
	}
	if cmd.Cycle != 0 {
		player.CycleWeapon(cmd.Cycle)
	}
	if cmd.SpeedDelta != 0 {
		player.AdjustShotSpeed(cmd.SpeedDelta)
	}

	w.Aim(id, cmd.Aim)

	var shot *sim.Projectile
	if cmd.Fire {
		shot = w.Fire(sim.FireCommand{Player: id, Origin: sim.InvalidEntityID, Target: cmd.Aim})
	}
	if cmd.Detonate {
		w.DetonateAll(id)
	}
	return shot
}
