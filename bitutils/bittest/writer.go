// Package bittest builds MSB-first bit buffers for decoder tests.
package bittest

import "encoding/base64"

// Writer appends fixed-width values to a byte buffer, most significant bit first.
type Writer struct {
	data []byte
	bits uint
}

// Write appends the low width bits of value.
func (w *Writer) Write(value uint64, width uint) *Writer {
	for i := width; i > 0; i-- {
		if w.bits%8 == 0 {
			w.data = append(w.data, 0)
		}
		if value&(1<<(i-1)) != 0 {
			w.data[w.bits/8] |= 0x80 >> (w.bits % 8)
		}
		w.bits++
	}
	return w
}

// Bool appends a single bit.
func (w *Writer) Bool(value bool) *Writer {
	if value {
		return w.Write(1, 1)
	}
	return w.Write(0, 1)
}

// Flags appends a bitmap of width bits with the given 1-based positions set.
func (w *Writer) Flags(width uint, ids ...uint) *Writer {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := uint(1); i <= width; i++ {
		w.Bool(set[i])
	}
	return w
}

// Letters appends each upper-case letter as a 6-bit offset from 'A'.
func (w *Writer) Letters(s string) *Writer {
	for i := 0; i < len(s); i++ {
		w.Write(uint64(s[i]-'A'), 6)
	}
	return w
}

// Len returns the number of bits written so far.
func (w *Writer) Len() uint {
	return w.bits
}

// Bytes returns the buffer. Unused bits of the final byte are zero.
func (w *Writer) Bytes() []byte {
	return w.data
}

// String returns the buffer as URL-safe base64 without padding.
func (w *Writer) String() string {
	return base64.RawURLEncoding.EncodeToString(w.data)
}
