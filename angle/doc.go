// Package angle computes body-joint angles from pose landmarks.
//
// The geometry is deliberately planar: angles are derived from normalized
// x/y coordinates only, so downscaling a frame before estimation does not
// change results beyond floating-point noise. Each supported exercise kind
// has a fixed table of named joint triples; extraction fills a sparse Map
// whose missing keys mean "insufficient data", which is distinct from a
// present key at an extreme value.
package angle
