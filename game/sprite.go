package game

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/reticle.svg
var reticleSVG []byte

// rasterizeSVG renders SVG data into an RGBA image of the given size
func rasterizeSVG(svgData []byte, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// Reticle is the aiming cursor
type Reticle struct {
	image *ebiten.Image
}

// NewReticle rasterizes the embedded reticle
func NewReticle() (*Reticle, error) {
	img, err := rasterizeSVG(reticleSVG, reticleSize, reticleSize)
	if err != nil {
		return nil, err
	}
	return &Reticle{image: ebiten.NewImageFromImage(img)}, nil
}

// Draw centers the reticle on screen position (sx, sy), dimmed while the
// current weapon is cooling down
func (r *Reticle) Draw(screen *ebiten.Image, sx, sy float64, ready bool) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(sx-reticleSize/2, sy-reticleSize/2)
	if !ready {
		op.ColorScale.ScaleAlpha(0.4)
	}
	screen.DrawImage(r.image, op)
}
