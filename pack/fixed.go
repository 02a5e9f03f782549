package pack

import "github.com/arloliu/tenpack/index"

// uniqueEntries collects the unique entries of v in [start, end) into a
// fresh vector of the same type. Assumes the range is sorted non-decreasing.
func uniqueEntries(v *index.Vector, start, end int) *index.Vector {
	unique := index.NewVector(v.Type())
	if end-start <= 0 {
		return unique
	}

	prev := v.Get(start)
	// Same element type as the source, pushes cannot overflow.
	_ = unique.Push(prev)
	for j := start + 1; j < end; j++ {
		curr := v.Get(j)
		if curr > prev {
			prev = curr
			_ = unique.Push(curr)
		}
	}

	return unique
}

// findMaxFixedValue computes the fan-out of a Fixed mode: the maximum
// segment size at fixedLevel found under the parent runs it descends into.
//
// The coordinates are sorted lexicographically, so segment sizes at any
// level are run lengths. Levels above the fixed one descend only into the
// parent runs of maximal length. Segments under shorter runs are not
// inspected, so when a shorter run holds a wider segment at the fixed level
// the result is smaller than the widest segment of the tensor. numCoords is
// the number of coordinates visible in the current subtree.
func findMaxFixedValue(coords []*index.Vector, order, fixedLevel, level, numCoords int) int {
	if numCoords == 0 {
		return 0
	}
	if level == order {
		return numCoords
	}
	if level == fixedLevel {
		return uniqueEntries(coords[level], 0, coords[level].Len()).Len()
	}

	// Find the coordinate values with the maximum run length at this level.
	levelCoords := coords[level]
	maxSize := 0
	maxCoords := index.NewVector(levelCoords.Type())
	coordCur := levelCoords.Get(0)
	sizeCur := 1
	for j := 1; j < numCoords; j++ {
		if levelCoords.Get(j) == coordCur {
			sizeCur++
			continue
		}
		if sizeCur > maxSize {
			maxSize = sizeCur
			maxCoords.Clear()
			_ = maxCoords.Push(coordCur)
		} else if sizeCur == maxSize {
			_ = maxCoords.Push(coordCur)
		}
		sizeCur = 1
		coordCur = levelCoords.Get(j)
	}
	if sizeCur > maxSize {
		maxSize = sizeCur
		maxCoords.Clear()
		_ = maxCoords.Push(coordCur)
	} else if sizeCur == maxSize {
		_ = maxCoords.Push(coordCur)
	}

	// Recurse into each maximal run with the coordinates filtered to it.
	maxFixedValue := 0
	subCoords := make([]*index.Vector, order)
	for k := range order {
		subCoords[k] = index.NewVector(coords[k].Type())
	}
	for l := range maxCoords.Len() {
		for k := range order {
			subCoords[k].Clear()
		}
		for j := range numCoords {
			if levelCoords.Get(j) != maxCoords.Get(l) {
				continue
			}
			for k := range order {
				_ = subCoords[k].Push(coords[k].Get(j))
			}
		}
		segment := findMaxFixedValue(subCoords, order, fixedLevel, level+1, maxSize)
		maxFixedValue = max(maxFixedValue, segment)
	}

	return maxFixedValue
}
