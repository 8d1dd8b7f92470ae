package parser

import "fmt"

// SourceLocation points at a fragment of parser input. It is either a byte span into a
// single source string, or a byte span inside one segment of a pre-split slice.
type SourceLocation struct {
	Start   int
	End     int
	Segment int
	InSlice bool
}

// StrSpan returns a location inside a single source string.
func StrSpan(start, end int) SourceLocation {
	return SourceLocation{Start: start, End: end}
}

// SliceSegment returns a location inside segment of a slice input.
func SliceSegment(segment, start, end int) SourceLocation {
	return SourceLocation{Start: start, End: end, Segment: segment, InSlice: true}
}

// Len returns the number of bytes covered by the location.
func (l SourceLocation) Len() int {
	return l.End - l.Start
}

// String renders the location for diagnostics.
func (l SourceLocation) String() string {
	if l.InSlice {
		return fmt.Sprintf("segment %d, bytes %d..%d", l.Segment, l.Start, l.End)
	}
	return fmt.Sprintf("bytes %d..%d", l.Start, l.End)
}

// Cover returns the smallest location spanning both l and other.
// Locations in different slice segments keep l's segment.
func (l SourceLocation) Cover(other SourceLocation) SourceLocation {
	if l.InSlice && other.InSlice && l.Segment != other.Segment {
		return l
	}
	out := l
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}
