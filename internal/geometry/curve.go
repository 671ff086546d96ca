package geometry

// SegmentKind tags a path segment.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	LineTo
	CurveTo
)

func (k SegmentKind) String() string {
	switch k {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case CurveTo:
		return "C"
	default:
		return "?"
	}
}

// Segment is one element of a path. Control points are only meaningful for CurveTo.
type Segment struct {
	Kind     SegmentKind
	To       Point
	Control1 Point
	Control2 Point
}

// CurveOffset returns the horizontal distance of Bezier control points from
// their anchors for a given step width.
func CurveOffset(step float64) float64 {
	return step / 2
}

// BuildPath connects points in order. With curved set, each segment is a cubic
// Bezier whose control points sit offset pixels right of the previous anchor and
// left of the next one, at the anchors' own heights. offset is constant for the
// whole series.
func BuildPath(points []Point, curved bool, offset float64) []Segment {
	if len(points) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(points))
	segments = append(segments, Segment{Kind: MoveTo, To: points[0]})

	prev := points[0]
	for _, p := range points[1:] {
		if curved {
			segments = append(segments, Segment{
				Kind:     CurveTo,
				To:       p,
				Control1: Point{X: prev.X + offset, Y: prev.Y},
				Control2: Point{X: p.X - offset, Y: p.Y},
			})
		} else {
			segments = append(segments, Segment{Kind: LineTo, To: p})
		}
		prev = p
	}

	return segments
}

// LinePath is a two-point straight path.
func LinePath(from, to Point) []Segment {
	return []Segment{
		{Kind: MoveTo, To: from},
		{Kind: LineTo, To: to},
	}
}
