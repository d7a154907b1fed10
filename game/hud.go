package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"orbitfire/sim"
)

// Stats are the frame counters shown with F3
type Stats struct {
	FPS      float64
	Tracked  int // bodies in the collision space
	Pairs    int // collision pairs resolved last frame
	Particle int

	Profiling bool
}

// HUD draws the player's status panel
type HUD struct {
	face *text.GoXFace
}

// NewHUD creates a HUD using the built-in bitmap font
func NewHUD() *HUD {
	return &HUD{face: text.NewGoXFace(basicfont.Face7x13)}
}

// statusLines describes player id's state, one entry per line
func statusLines(w *sim.World, id sim.PlayerID) []string {
	player, ok := w.Player(id)
	if !ok {
		return []string{"no player"}
	}

	lines := []string{
		fmt.Sprintf("t=%.1fs", w.Now().Seconds()),
		fmt.Sprintf("resources %.1f (+%.1f/s)", player.Resources, w.IncomeRate(id)),
		fmt.Sprintf("shot speed %.0f", player.ShotSpeed),
		fmt.Sprintf("discovered %d", len(player.Discovered())),
	}
	if _, alive := w.Planet(player.Home); !alive {
		lines = append(lines, "HOME DESTROYED - R to restart")
	}
	return lines
}

// statsLines describes the frame counters
func statsLines(w *sim.World, s Stats) []string {
	lines := []string{
		fmt.Sprintf("fps %.0f tick %d", s.FPS, w.Ticks()),
		fmt.Sprintf("planets %d shots %d", len(w.Planets()), len(w.Projectiles())),
		fmt.Sprintf("tracked %d pairs %d", s.Tracked, s.Pairs),
		fmt.Sprintf("scheduled %d particles %d", w.PendingActions(), s.Particle),
	}
	if s.Profiling {
		lines = append(lines, "capturing profile")
	}
	return lines
}

// Draw renders the status block, the arsenal, and optionally the stats block
func (h *HUD) Draw(screen *ebiten.Image, w *sim.World, id sim.PlayerID, stats Stats, debug DebugState) {
	y := float64(hudMarginY)
	h.drawText(screen, strings.Join(statusLines(w, id), "\n"), hudMarginX, y, colorHUD)
	y += float64(len(statusLines(w, id))*hudLineSpacing) + hudLineSpacing/2

	if player, ok := w.Player(id); ok {
		now := w.Now()
		for i := range player.Arsenal {
			wpn := &player.Arsenal[i]
			clr := colorHUDDim
			marker := "  "
			if i == player.Current {
				clr = colorHUD
				marker = "> "
			}
			h.drawText(screen, fmt.Sprintf("%s%d %s", marker, i+1, wpn.Config.Type), hudMarginX, y, clr)

			// Cooldown bar fills as the weapon recharges
			barX := float32(hudMarginX + 110)
			barY := float32(y + 4)
			vector.DrawFilledRect(screen, barX, barY, 60, 6, colorCooldownBack, false)
			vector.DrawFilledRect(screen, barX, barY, float32(60*wpn.CooldownFraction(now)), 6, colorCooldownFront, false)
			y += hudLineSpacing
		}
	}

	if debug.ShowStats {
		y += hudLineSpacing / 2
		h.drawText(screen, strings.Join(statsLines(w, stats), "\n"), hudMarginX, y, colorHUDDim)
	}
}

func (h *HUD) drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = hudLineSpacing
	text.Draw(screen, s, h.face, op)
}
