package trialseq

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection restricts which rows an [Importer] returns from a
// condition resource. The zero value selects all rows.
//
// A Selection is either an explicit index list or a start:step:stop
// slice. Indices may be negative, counting back from the end of the
// resource; resolution against the actual row count happens in
// [Selection.Apply].
type Selection struct {
	indices []int
	slice   *sliceSel
}

// sliceSel is a start:step:stop range over row indices. Nil fields
// take their defaults at Apply time: start=0, step=1, stop=rowCount.
type sliceSel struct {
	start *int
	step  *int
	stop  *int
}

// SelectAll returns the selection covering every row.
func SelectAll() Selection {
	return Selection{}
}

// SelectIndex selects the single row at index i.
func SelectIndex(i int) Selection {
	return Selection{indices: []int{i}}
}

// SelectIndices selects the given rows, in the given order.
func SelectIndices(indices ...int) Selection {
	return Selection{indices: indices}
}

// IsAll reports whether the selection covers every row.
func (s Selection) IsAll() bool {
	return s.indices == nil && s.slice == nil
}

// ParseSelection parses a selection expression. Supported forms:
//
//   - ""            all rows
//   - "3"           a single index
//   - "0,2,5"       an explicit list
//   - "0:2:10"      a start:step:stop slice
//   - "2:8"         a start:stop slice (step 1)
//   - ":"           all rows, spelled as a slice
//
// Any index, including slice bounds, may be negative to count from the
// end of the resource.
func ParseSelection(expr string) (Selection, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return SelectAll(), nil
	}

	if strings.Contains(expr, ":") {
		return parseSliceSelection(expr)
	}

	parts := strings.Split(expr, ",")
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Selection{}, fmt.Errorf(
				"parse selection %q: bad index %q", expr, p)
		}
		indices = append(indices, i)
	}
	return Selection{indices: indices}, nil
}

// parseSliceSelection parses the colon forms: "start:stop" and
// "start:step:stop", any part optional.
func parseSliceSelection(expr string) (Selection, error) {
	parts := strings.Split(expr, ":")
	if len(parts) > 3 {
		return Selection{}, fmt.Errorf(
			"parse selection %q: too many colons", expr)
	}

	vals := make([]*int, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return Selection{}, fmt.Errorf(
				"parse selection %q: bad bound %q", expr, p)
		}
		vals[i] = &v
	}

	sl := &sliceSel{}
	switch len(parts) {
	case 2:
		sl.start, sl.stop = vals[0], vals[1]
	case 3:
		sl.start, sl.step, sl.stop = vals[0], vals[1], vals[2]
	}
	return Selection{slice: sl}, nil
}

// Apply resolves the selection against a resource of rowCount rows,
// returning the selected indices in selection order. Negative indices
// resolve from the end; an index outside the resource is an error.
func (s Selection) Apply(rowCount int) ([]int, error) {
	if s.IsAll() {
		return identityIndices(rowCount), nil
	}

	if s.slice != nil {
		return s.slice.apply(rowCount)
	}

	out := make([]int, 0, len(s.indices))
	for _, i := range s.indices {
		resolved := i
		if resolved < 0 {
			resolved += rowCount
		}
		if resolved < 0 || resolved >= rowCount {
			return nil, fmt.Errorf(
				"selection index %d out of range for %d rows",
				i, rowCount)
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (sl *sliceSel) apply(rowCount int) ([]int, error) {
	start, step, stop := 0, 1, rowCount
	if sl.start != nil {
		start = *sl.start
		if start < 0 {
			start += rowCount
		}
	}
	if sl.stop != nil {
		stop = *sl.stop
		if stop < 0 {
			stop += rowCount
		}
	}
	if sl.step != nil {
		step = *sl.step
	}
	if step <= 0 {
		return nil, fmt.Errorf("selection step must be positive, got %d", step)
	}
	if start < 0 || start > rowCount {
		return nil, fmt.Errorf(
			"selection start %d out of range for %d rows", start, rowCount)
	}
	if stop > rowCount {
		stop = rowCount
	}

	var out []int
	for i := start; i < stop; i += step {
		out = append(out, i)
	}
	return out, nil
}
