package chain

type blockRange struct {
	From uint64
	To   uint64
}

// splitRange splits the inclusive range [from, to] into consecutive chunks
// of at most size blocks.
func splitRange(from, to, size uint64) []blockRange {
	if from > to {
		return nil
	}
	if size == 0 {
		return []blockRange{{From: from, To: to}}
	}

	var ranges []blockRange
	for start := from; start <= to; {
		end := start + size - 1
		if end > to || end < start {
			end = to
		}
		ranges = append(ranges, blockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}
	return ranges
}
