// Package viz renders the particle scene in the terminal.
//
// Geometry committed by the frame driver is rasterized onto a braille
// [Canvas] by a [Surface], which serves both renderers: batch sinks draw
// through it directly and stream sinks upload their render units to it.
//
//   - [Model]: live Bubble Tea view with a stats panel
//   - [Canvas]: colored braille canvas with dithered alpha
//   - [Themes]: panel colors paired with scene gradients
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	R       - Restart points
//	Tab     - Cycle parameters
//	Up/Down - Adjust the selected parameter
//	L T P B - Toggle lines, triangles, points and background
//	C       - Cycle themes
//	?       - Show help overlay
package viz
