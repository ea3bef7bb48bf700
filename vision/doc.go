// Package vision handles the image side of the frame pipeline: decoding
// transport bytes into frames, bounded downscaling for throughput, JPEG
// re-encoding, and the skeleton renderer that overlays detected landmarks
// onto a frame.
//
// Downscaling is purely a cost control. Landmarks are normalized to the
// frame, so angles computed after a downscale differ from the full-size
// result only by floating-point noise.
package vision
