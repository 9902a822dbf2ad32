package region

import (
	"fmt"
	"slices"

	"github.com/arloliu/mcnbt/errs"
)

// span is a run of sectors [start, start+length).
type span struct {
	start  uint32
	length uint32
}

func (s span) end() uint32 { return s.start + s.length }

// allocator tracks free sectors between the header and the end of the file
// as sorted, non-adjacent runs.
type allocator struct {
	free []span
	end  uint32 // first sector past the file
}

// conflict describes a header entry the allocator could not account for.
type conflict struct {
	slot   int
	loc    Location
	reason string
	shared bool // sectors may belong to another slot and must not be released
}

// newAllocator derives the free runs from the header. fileSectors is the
// file length in whole sectors. Entries that point into the header or
// overlap an earlier entry are returned as conflicts; their sectors are
// still treated as used.
func newAllocator(h *Header, fileSectors uint32) (*allocator, []conflict) {
	type used struct {
		slot int
		loc  Location
	}

	var conflicts []conflict
	entries := make([]used, 0, SlotCount)
	end := max(fileSectors, HeaderSectors)
	for slot, loc := range h.Locations {
		if loc.IsEmpty() {
			continue
		}
		if loc.Offset < HeaderSectors {
			conflicts = append(conflicts, conflict{slot: slot, loc: loc, reason: "points into header", shared: true})
			continue
		}
		if loc.End() > fileSectors {
			conflicts = append(conflicts, conflict{slot: slot, loc: loc, reason: "extends past end of file"})
		}
		entries = append(entries, used{slot: slot, loc: loc})
		end = max(end, loc.End())
	}

	slices.SortFunc(entries, func(a, b used) int {
		return int(a.loc.Offset) - int(b.loc.Offset)
	})

	a := &allocator{end: end}
	cursor := uint32(HeaderSectors)
	for _, e := range entries {
		if e.loc.Offset < cursor {
			conflicts = append(conflicts, conflict{slot: e.slot, loc: e.loc, reason: "overlaps another chunk", shared: true})
		} else if e.loc.Offset > cursor {
			a.free = append(a.free, span{start: cursor, length: e.loc.Offset - cursor})
		}
		cursor = max(cursor, e.loc.End())
	}
	if cursor < end {
		a.free = append(a.free, span{start: cursor, length: end - cursor})
	}

	return a, conflicts
}

// allocate reserves n contiguous sectors and returns the first one.
//
// The first free run large enough wins. Failing that, a free run that ends
// at the end of the file is extended; otherwise sectors are appended.
func (a *allocator) allocate(n uint32) (uint32, error) {
	if n == 0 || n > MaxSectorCount {
		return 0, fmt.Errorf("%w: cannot allocate %d sectors", errs.ErrAllocationFailure, n)
	}

	for i, run := range a.free {
		if run.length < n {
			continue
		}
		if run.length == n {
			a.free = slices.Delete(a.free, i, i+1)
		} else {
			a.free[i] = span{start: run.start + n, length: run.length - n}
		}

		return run.start, nil
	}

	start := a.end
	if last := len(a.free) - 1; last >= 0 && a.free[last].end() == a.end {
		start = a.free[last].start
		a.free = a.free[:last]
	}
	if start > MaxSectorOffset {
		return 0, fmt.Errorf("%w: region full at sector %d", errs.ErrAllocationFailure, start)
	}
	a.end = start + n

	return start, nil
}

// release returns [start, start+n) to the free list, merging neighbours.
func (a *allocator) release(start, n uint32) {
	if n == 0 {
		return
	}

	s := span{start: start, length: n}
	i, _ := slices.BinarySearchFunc(a.free, s.start, func(r span, target uint32) int {
		return int(r.start) - int(target)
	})
	a.free = slices.Insert(a.free, i, s)

	if i+1 < len(a.free) && a.free[i].end() == a.free[i+1].start {
		a.free[i].length += a.free[i+1].length
		a.free = slices.Delete(a.free, i+1, i+2)
	}
	if i > 0 && a.free[i-1].end() == a.free[i].start {
		a.free[i-1].length += a.free[i].length
		a.free = slices.Delete(a.free, i, i+1)
	}
}

// freeSectors returns the total number of free sectors inside the file.
func (a *allocator) freeSectors() uint32 {
	var n uint32
	for _, run := range a.free {
		n += run.length
	}

	return n
}
