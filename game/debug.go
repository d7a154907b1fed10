package game

// DebugState holds the overlay toggles. It lives on the Game and survives
// world restarts.
type DebugState struct {
	ShowOrbits bool // F1: orbit paths
	ShowRadar  bool // F2: radar coverage of the viewing player
	ShowStats  bool // F3: detector and scheduler counters in the HUD
}
