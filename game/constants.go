package game

import "image/color"

// Display constants
const (
	maxFrameDelta = 0.1 // seconds; longer frames are clamped

	minZoom  = 0.25
	maxZoom  = 4.0
	zoomStep = 1.1

	speedStep = 5.0 // shot speed change per key press

	trailAlpha   = 0.8
	previewAlpha = 0.8

	orbitSegments = 96

	healthBarHeight = 4.0
	healthBarGap    = 3.0

	starCount          = 160
	starSpanMultiplier = 1.6
	starParallax       = 0.3

	radarRadius     = 90.0
	radarMargin     = 14.0
	radarEdgeMargin = 4.0
	radarRange      = 700.0
	radarBlipSize   = 2.5

	reticleSize = 24

	hudMarginX     = 8
	hudMarginY     = 8
	hudLineSpacing = 16

	slowLogInterval = 10 // seconds between slow-frame warnings
)

// Color constants
var (
	colorBackground    = color.NRGBA{R: 3, G: 5, B: 16, A: 255}
	colorStar          = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colorOrbit         = color.NRGBA{R: 40, G: 50, B: 80, A: 255}
	colorRadarCoverage = color.NRGBA{R: 40, G: 120, B: 80, A: 120}
	colorPreview       = color.NRGBA{R: 120, G: 210, B: 255, A: 255}
	colorLivePreview   = color.NRGBA{R: 255, G: 180, B: 60, A: 255}
	colorHealthBack    = color.NRGBA{R: 100, G: 0, B: 0, A: 255}
	colorHealthFront   = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	colorHomeRing      = color.NRGBA{R: 180, G: 255, B: 200, A: 255}
	colorRadarBackdrop = color.NRGBA{R: 10, G: 16, B: 32, A: 230}
	colorRadarRing     = color.NRGBA{R: 24, G: 48, B: 96, A: 255}
	colorRadarPlayer   = color.NRGBA{R: 180, G: 255, B: 200, A: 255}
	colorRadarShot     = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	colorHUD           = color.NRGBA{R: 220, G: 230, B: 255, A: 255}
	colorHUDDim        = color.NRGBA{R: 120, G: 130, B: 160, A: 255}
	colorCooldownBack  = color.NRGBA{R: 40, G: 40, B: 60, A: 255}
	colorCooldownFront = color.NRGBA{R: 120, G: 210, B: 255, A: 255}

	// Explosion palette endpoints, blended in Lab space
	colorBlastHot  = color.RGBA{R: 255, G: 250, B: 200, A: 255}
	colorBlastCool = color.RGBA{R: 200, G: 40, B: 10, A: 255}
)
