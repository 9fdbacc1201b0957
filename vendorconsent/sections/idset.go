package sections

import "sort"

type idRange struct {
	start uint16
	end   uint16
}

// idSet accumulates vendor IDs and inclusive ranges of them. Ranges are only expanded once,
// after merging, so overlapping entries cost nothing extra.
type idSet struct {
	ranges []idRange
}

func (s *idSet) add(id uint16) {
	s.addRange(id, id)
}

// addRange ignores ranges whose start is after their end.
func (s *idSet) addRange(start, end uint16) {
	if start > end {
		return
	}
	s.ranges = append(s.ranges, idRange{start: start, end: end})
}

// ids returns every ID in the set in ascending order, without duplicates. The result is never nil.
func (s *idSet) ids() []uint16 {
	sort.Slice(s.ranges, func(i, j int) bool {
		return s.ranges[i].start < s.ranges[j].start
	})

	ids := make([]uint16, 0)
	// next is the smallest ID which hasn't been emitted yet. It can reach 65536.
	next := 0
	for _, r := range s.ranges {
		from := int(r.start)
		if from < next {
			from = next
		}
		for id := from; id <= int(r.end); id++ {
			ids = append(ids, uint16(id))
		}
		if int(r.end)+1 > next {
			next = int(r.end) + 1
		}
	}
	return ids
}
