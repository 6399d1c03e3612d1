// Package viz renders worlds in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, two by four dots per cell
//   - [DrawWorld]: walls, links and particles through a [Viewport]
//   - [LiveModel]: Bubble Tea viewer pacing a world against wall time
//   - [Recorder]: captures canvas frames into an animated GIF
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single step while paused
//	R     - Rebuild the scene
//	D     - Toggle debug information
//	Tab   - Cycle world parameters
//	Up/Dn - Tune the selected parameter
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
