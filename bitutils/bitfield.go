package bitutils

// ID is the set of integer types a BitField can decode into.
type ID interface {
	~uint8 | ~uint16
}

// ParseBitField reads length single-bit flags starting at bitStartIndex. The flag at relative
// position i maps to the ID i+1, so the result is ascending and free of duplicates.
// The returned slice is never nil.
func ParseBitField[T ID](data []byte, bitStartIndex uint, length uint) ([]T, error) {
	if err := RequireBits(data, bitStartIndex+length); err != nil {
		return nil, err
	}

	ids := make([]T, 0)
	for i := uint(0); i < length; i++ {
		if IsSet(data, bitStartIndex+i) {
			ids = append(ids, T(i+1))
		}
	}
	return ids, nil
}

// IntIDs widens ids to ints. encoding/json writes any uint8 slice as a base64 string, so ID
// lists go through this before being marshalled.
func IntIDs[T ID](ids []T) []int {
	widened := make([]int, len(ids))
	for i, id := range ids {
		widened[i] = int(id)
	}
	return widened
}
