package geometry

// NearestIndex resolves a pointer position to the closest series index.
// It is total: any input, including off-canvas, infinite or NaN coordinates,
// yields an index in [0, m.Count()-1] (or 0 for an empty series).
// Only the horizontal coordinate participates; points are evenly spaced by index.
func NearestIndex(pointer Point, m Mapper) int {
	return m.Index(pointer.X)
}
