package angle

import "math"

// Point is a 2D position in normalized frame coordinates.
type Point struct {
	X float64
	Y float64
}

// At returns the interior angle in degrees at vertex b, formed by the rays
// b->a and b->c. The second return value is false when either ray has zero
// length (duplicate points), in which case the angle is undefined.
//
// The cosine is clamped to [-1, 1] before the inverse cosine so that
// floating-point overshoot on nearly-collinear points cannot produce a
// domain error. Results are always in [0, 180].
func At(a, b, c Point) (float64, bool) {
	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	magBA := math.Hypot(bax, bay)
	magBC := math.Hypot(bcx, bcy)
	if magBA == 0 || magBC == 0 {
		return 0, false
	}

	cosine := (bax*bcx + bay*bcy) / (magBA * magBC)
	cosine = math.Max(-1, math.Min(1, cosine))

	return math.Acos(cosine) * 180 / math.Pi, true
}
