package s1_align

import (
	"fmt"
	"time"
)

// Frame is a date-indexed table of float columns. Dates are unique and
// ascending; absent cells hold Missing.
type Frame struct {
	dates []time.Time
	names []string
	cols  map[string][]float64
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]float64)}
}

// FromSeries builds a one-column frame.
func FromSeries(name string, s Series) *Frame {
	f := NewFrame()
	f.dates = s.Dates()
	col := make([]float64, len(f.dates))
	for i, d := range f.dates {
		col[i] = s[d]
	}
	f.names = []string{name}
	f.cols[name] = col
	return f
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Dates returns the row keys.
func (f *Frame) Dates() []time.Time {
	return append([]time.Time(nil), f.dates...)
}

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns a copy of a column. A missing column reads as all Missing.
func (f *Frame) Column(name string) []float64 {
	col, ok := f.cols[name]
	out := make([]float64, len(f.dates))
	if !ok {
		for i := range out {
			out[i] = Missing
		}
		return out
	}
	copy(out, col)
	return out
}

// Set adds or replaces a column. values must have one entry per row.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return fmt.Errorf("column %q has %d values, frame has %d rows", name, len(values), len(f.dates))
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = append([]float64(nil), values...)
	return nil
}

// OuterJoin combines two frames on date. The result holds the union of
// both date sets; cells absent on one side are Missing. Column names must
// not collide.
func (f *Frame) OuterJoin(other *Frame) (*Frame, error) {
	for _, name := range other.names {
		if f.Has(name) {
			return nil, fmt.Errorf("column %q present on both sides", name)
		}
	}

	union := make(map[time.Time]struct{}, len(f.dates)+len(other.dates))
	for _, d := range f.dates {
		union[d] = struct{}{}
	}
	for _, d := range other.dates {
		union[d] = struct{}{}
	}
	dates := make([]time.Time, 0, len(union))
	for d := range union {
		dates = append(dates, d)
	}
	sortDates(dates)

	out := NewFrame()
	out.dates = dates
	for _, src := range []*Frame{f, other} {
		index := make(map[time.Time]int, len(src.dates))
		for i, d := range src.dates {
			index[d] = i
		}
		for _, name := range src.names {
			col := make([]float64, len(dates))
			for i, d := range dates {
				if j, ok := index[d]; ok {
					col[i] = src.cols[name][j]
				} else {
					col[i] = Missing
				}
			}
			out.names = append(out.names, name)
			out.cols[name] = col
		}
	}
	return out, nil
}

// JoinAll outer-joins frames left to right.
func JoinAll(frames ...*Frame) (*Frame, error) {
	out := NewFrame()
	for _, fr := range frames {
		joined, err := out.OuterJoin(fr)
		if err != nil {
			return nil, err
		}
		out = joined
	}
	return out, nil
}

// DropMissing returns the rows where every listed column has a value.
func (f *Frame) DropMissing(names ...string) *Frame {
	keep := make([]int, 0, len(f.dates))
	for i := range f.dates {
		ok := true
		for _, name := range names {
			col, exists := f.cols[name]
			if !exists || IsMissing(col[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	out := NewFrame()
	out.dates = make([]time.Time, len(keep))
	for k, i := range keep {
		out.dates[k] = f.dates[i]
	}
	for _, name := range f.names {
		col := make([]float64, len(keep))
		for k, i := range keep {
			col[k] = f.cols[name][i]
		}
		out.names = append(out.names, name)
		out.cols[name] = col
	}
	return out
}

// Fill replaces missing cells of the named columns in place. A column
// that does not exist is created first, all Missing.
func (f *Frame) Fill(g GapFill, names ...string) {
	for _, name := range names {
		if !f.Has(name) {
			_ = f.Set(name, f.Column(name))
		}
		FillValues(f.cols[name], g)
	}
}

// Shift returns column name moved down n rows; the first n rows are
// Missing. It is the previous-row value, not the previous calendar day.
func (f *Frame) Shift(name string, n int) []float64 {
	src := f.Column(name)
	out := make([]float64, len(src))
	for i := range out {
		if i-n >= 0 && i-n < len(src) {
			out[i] = src[i-n]
		} else {
			out[i] = Missing
		}
	}
	return out
}
