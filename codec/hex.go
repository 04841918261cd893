/*
Copyright © 2026 the raw2l1 authors.
This file is part of raw2l1.

raw2l1 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raw2l1 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raw2l1.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package codec holds the decoding idioms shared by the instrument readers:
// fixed-width hexadecimal profiles, message framing, dimension pre-scans,
// firmware version tables, status-bit tables and unit normalization.
package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Hex20Width is the number of characters of one profile token.
const Hex20Width = 5

// TwosComplement interprets the low bits bits of v as a two's-complement
// integer.
func TwosComplement(v uint64, bits uint) int64 {
	mask := uint64(1) << (bits - 1)
	v &= (mask << 1) - 1
	if v&mask != 0 {
		return int64(v) - int64(mask<<1)
	}
	return int64(v)
}

// DecodeHex20 decodes one 5-character hexadecimal token into a signed
// 20-bit value: tokens at or above 2^19 are negative.
func DecodeHex20(tok string) (int, error) {
	if len(tok) != Hex20Width {
		return 0, fmt.Errorf("hex token %q: want %d characters", tok, Hex20Width)
	}
	u, err := strconv.ParseUint(tok, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("hex token %q: %v", tok, err)
	}
	return int(TwosComplement(u, 20)), nil
}

// EncodeHex20 is the inverse of DecodeHex20 for values in [-2^19, 2^19).
func EncodeHex20(v int) string {
	return fmt.Sprintf("%05X", uint32(v)&0xFFFFF)
}

// DecodeProfile decodes a line of n consecutive hexadecimal tokens of
// width characters each. It returns the raw signed integers and the same
// values multiplied by factor. Surrounding white space is ignored; any
// other length mismatch is an error.
func DecodeProfile(line string, width, n int, factor float64) ([]int, []float64, error) {
	line = strings.TrimSpace(line)
	if len(line) != width*n {
		return nil, nil, fmt.Errorf("profile has %d characters, want %d (%d gates of %d)",
			len(line), width*n, n, width)
	}
	bits := uint(4 * width)
	raw := make([]int, n)
	scaled := make([]float64, n)
	for i := 0; i < n; i++ {
		tok := line[i*width : (i+1)*width]
		u, err := strconv.ParseUint(tok, 16, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("gate %d: hex token %q: %v", i, tok, err)
		}
		raw[i] = int(TwosComplement(u, bits))
		scaled[i] = float64(raw[i]) * factor
	}
	return raw, scaled, nil
}
