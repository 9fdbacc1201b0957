package bitutils

import (
	"fmt"

	"github.com/prebid/tcstring/errortypes"
)

// ReadBits returns the unsigned integer stored in bits [start, start+length) of data.
// Bit 0 is the most significant bit of data[0], and bits run MSB-first across the whole slice.
//
// length must be at most 64. There is no bounds checking here: callers are expected to have
// validated the slice with RequireBits already.
func ReadBits(data []byte, start uint, length uint) uint64 {
	if length == 0 {
		return 0
	}

	end := start + length - 1
	firstByte := start / 8
	lastByte := end / 8
	headMask := byte(0xff >> (start % 8))
	// Number of leading bits taken from the last byte, in [1, 8]
	tailBits := end%8 + 1

	if firstByte == lastByte {
		return uint64(data[firstByte]&headMask) >> (8 - tailBits)
	}

	value := uint64(data[firstByte] & headMask)
	for i := firstByte + 1; i < lastByte; i++ {
		value = value<<8 | uint64(data[i])
	}
	return value<<tailBits | uint64(data[lastByte]>>(8-tailBits))
}

// IsSet returns true if the bitIndex'th bit in data is a 1, and false if it's a 0.
func IsSet(data []byte, bitIndex uint) bool {
	return data[bitIndex/8]&(0x80>>(bitIndex%8)) != 0
}

// RequireBits returns an InsufficientLength error if data holds fewer than bitCount bits.
func RequireBits(data []byte, bitCount uint) error {
	if uint(len(data))*8 < bitCount {
		return &errortypes.InsufficientLength{
			Message: fmt.Sprintf("expected at least %d bits, but the consent string was only %d bytes long", bitCount, len(data)),
		}
	}
	return nil
}

// ParseUInt8 parses a field of up to 8 bits starting at the given index.
func ParseUInt8(data []byte, bitStartIndex uint, length uint) (uint8, error) {
	if err := RequireBits(data, bitStartIndex+length); err != nil {
		return 0, err
	}
	return uint8(ReadBits(data, bitStartIndex, length)), nil
}

// ParseUInt16 parses a field of up to 16 bits starting at the given index.
func ParseUInt16(data []byte, bitStartIndex uint, length uint) (uint16, error) {
	if err := RequireBits(data, bitStartIndex+length); err != nil {
		return 0, err
	}
	return uint16(ReadBits(data, bitStartIndex, length)), nil
}

// ParseUInt64 parses a field of up to 64 bits starting at the given index.
func ParseUInt64(data []byte, bitStartIndex uint, length uint) (uint64, error) {
	if err := RequireBits(data, bitStartIndex+length); err != nil {
		return 0, err
	}
	return ReadBits(data, bitStartIndex, length), nil
}

// ParseAlphabetString parses charCount consecutive letters of bitWidth bits each, where 0 is 'A'
// and 25 is 'Z'. Language and country codes are stored this way with a bitWidth of 6.
func ParseAlphabetString(data []byte, bitStartIndex uint, bitWidth uint, charCount uint) (string, error) {
	if err := RequireBits(data, bitStartIndex+bitWidth*charCount); err != nil {
		return "", err
	}

	letters := make([]byte, charCount)
	for i := range letters {
		offset := ReadBits(data, bitStartIndex+uint(i)*bitWidth, bitWidth)
		if offset > 25 {
			return "", &errortypes.InvalidAlphabetOffset{
				Message: fmt.Sprintf("letter at bit %d has offset %d, which is outside A-Z", bitStartIndex+uint(i)*bitWidth, offset),
			}
		}
		letters[i] = 'A' + byte(offset)
	}
	return string(letters), nil
}
