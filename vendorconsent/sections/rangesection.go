package sections

import (
	"github.com/prebid/tcstring/bitutils"
)

const (
	numEntriesBits  = 12
	singleEntryBits = 17
	rangeEntryBits  = 33
)

// RangeSection is a decoded list of range entries along with the bit where it ended.
type RangeSection struct {
	IDs    []uint16
	EndBit uint
}

// ParseRangeSection parses a 12-bit entry count followed by that many entries, starting at
// bitStartIndex. Each entry is either a single 16-bit ID or an inclusive pair of them. The IDs of
// every entry are merged into one ascending set, so repeated or overlapping entries collapse.
func ParseRangeSection(data []byte, bitStartIndex uint) (RangeSection, error) {
	// This makes an int from bits [bitStartIndex, bitStartIndex + 12)
	numEntries, err := bitutils.ParseUInt16(data, bitStartIndex, numEntriesBits)
	if err != nil {
		return RangeSection{}, err
	}

	var set idSet
	currentOffset := bitStartIndex + numEntriesBits
	for i := uint16(0); i < numEntries; i++ {
		bitsConsumed, err := parseRangeEntry(&set, data, currentOffset)
		if err != nil {
			return RangeSection{}, err
		}
		currentOffset += bitsConsumed
	}

	return RangeSection{
		IDs:    set.ids(),
		EndBit: currentOffset,
	}, nil
}

// parseRangeEntry adds the IDs of the entry starting at initialBit to dst.
// It returns the number of bits consumed by the parsing.
func parseRangeEntry(dst *idSet, data []byte, initialBit uint) (uint, error) {
	if err := bitutils.RequireBits(data, initialBit+1); err != nil {
		return 0, err
	}

	// If the first bit is set, it's a Range of IDs
	if bitutils.IsSet(data, initialBit) {
		if err := bitutils.RequireBits(data, initialBit+rangeEntryBits); err != nil {
			return 0, err
		}
		start := uint16(bitutils.ReadBits(data, initialBit+1, 16))
		end := uint16(bitutils.ReadBits(data, initialBit+17, 16))
		dst.addRange(start, end)
		return rangeEntryBits, nil
	}

	if err := bitutils.RequireBits(data, initialBit+singleEntryBits); err != nil {
		return 0, err
	}
	dst.add(uint16(bitutils.ReadBits(data, initialBit+1, 16)))
	return singleEntryBits, nil
}
