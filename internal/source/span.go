package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into the source text of the
// method body under analysis. The zero value means "no span": diagnostics
// produced for synthetic constructs carry it and sort after everything else.
type Span struct {
	Start uint32
	End   uint32
}

// None is the missing span.
var None = Span{}

func (s Span) Valid() bool {
	return s != None
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.Valid() {
		return "<none>"
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover widens the span to include other. A missing span adopts other.
func (s Span) Cover(other Span) Span {
	if !s.Valid() {
		return other
	}
	if !other.Valid() {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Compare orders spans by (Start, End) with missing spans last.
func Compare(a, b Span) int {
	if a.Valid() != b.Valid() {
		if a.Valid() {
			return -1
		}
		return 1
	}
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}
		return 1
	}
	if a.End != b.End {
		if a.End < b.End {
			return -1
		}
		return 1
	}
	return 0
}
