package anvil

import (
	"fmt"
	"math/bits"
)

// Palette indices are packed into big-endian 64-bit words under one of two
// rules. Before 20w17a a value's bits may begin in one word and finish in
// the next ("stretching"); from 20w17a on, each word holds only complete
// values and the tail bits of a word go unused.

// indexBits is the width needed to address n palette entries.
func indexBits(n int) int {
	return bits.Len(uint(n - 1))
}

// paletteBits is indexBits with the format's floor of four bits for block
// state arrays.
func paletteBits(n int) int {
	if w := indexBits(n); w > 4 {
		return w
	}
	return 4
}

// packedLength returns how many words hold count values of the given width
// under each packing rule.
func packedLength(count, width int, stretches bool) int {
	if stretches {
		return (count*width + 63) / 64
	}
	perWord := 64 / width
	return (count + perWord - 1) / perWord
}

// unpackStates expands a packed array into one value per entry. Stored longs
// are reinterpreted as unsigned; every value is masked to width bits.
func unpackStates(words []int64, count, width int, stretches bool) ([]int, error) {
	if len(words) < packedLength(count, width, stretches) {
		return nil, fmt.Errorf("anvil: packed array too short: %d words for %d %d-bit values",
			len(words), count, width)
	}
	out := make([]int, count)
	mask := uint64(1)<<width - 1
	if !stretches {
		perWord := 64 / width
		for i := range out {
			word := uint64(words[i/perWord])
			out[i] = int(word >> (uint(i%perWord) * uint(width)) & mask)
		}
		return out, nil
	}
	cur := uint64(words[0])
	rem := 64
	next := 1
	for i := range out {
		if rem < width {
			// Splice the leftover low bits with the start of the next word.
			word := uint64(words[next])
			next++
			out[i] = int((cur | word<<rem) & mask)
			used := width - rem
			cur = word >> used
			rem = 64 - used
		} else {
			out[i] = int(cur & mask)
			cur >>= uint(width)
			rem -= width
		}
	}
	return out, nil
}

// packStates is the inverse of unpackStates, flushing a partial final word.
func packStates(values []int, width int, stretches bool) []int64 {
	out := make([]int64, 0, packedLength(len(values), width, stretches))
	if !stretches {
		perWord := 64 / width
		var cur uint64
		slot := 0
		for _, v := range values {
			cur |= uint64(v) << (uint(slot) * uint(width))
			slot++
			if slot == perWord {
				out = append(out, int64(cur))
				cur, slot = 0, 0
			}
		}
		if slot > 0 {
			out = append(out, int64(cur))
		}
		return out
	}
	var cur uint64
	rem := 0
	for _, v := range values {
		if rem+width > 64 {
			leftover := 64 - rem
			out = append(out, int64(cur|uint64(v)<<rem))
			cur = uint64(v) >> leftover
			rem = width - leftover
		} else {
			cur |= uint64(v) << rem
			rem += width
		}
	}
	return append(out, int64(cur))
}

// stateAt extracts a single value without walking the array, for reads
// against a section that was never materialized.
func stateAt(words []int64, index, width int, stretches bool) (int, error) {
	mask := uint64(1)<<width - 1
	if !stretches {
		perWord := 64 / width
		w := index / perWord
		if w >= len(words) {
			return 0, fmt.Errorf("anvil: packed array too short for entry %d", index)
		}
		return int(uint64(words[w]) >> (uint(index%perWord) * uint(width)) & mask), nil
	}
	bitIndex := index * width
	w := bitIndex / 64
	off := bitIndex % 64
	if w >= len(words) {
		return 0, fmt.Errorf("anvil: packed array too short for entry %d", index)
	}
	val := uint64(words[w]) >> off
	if avail := 64 - off; avail < width {
		if w+1 >= len(words) {
			return 0, fmt.Errorf("anvil: packed array too short for entry %d", index)
		}
		need := width - avail
		val = val&(uint64(1)<<avail-1) | uint64(words[w+1])&(uint64(1)<<need-1)<<avail
	}
	return int(val & mask), nil
}
