// Package viz draws mechanisms in the terminal.
//
// A Mechanism turns a joint angle into a Ligament whose root rides on an
// AnchorSupplier owned by another subsystem, and hands it to a Sink. Scene
// is the usual sink: it keeps the latest ligament per name and rasterizes
// them onto a braille Canvas.
//
// Braille Canvas:
// Each character cell holds 2x4 dots, so a Width x Height canvas has
// (2*Width) x (4*Height) addressable sub-pixels.
package viz
