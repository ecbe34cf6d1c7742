package bitseq

// Byte-level helpers over packed bit storage. Bit i of a []byte lives in
// bytes[i>>3] at position i&7, lowest bit first.

func getBit(bytes []byte, index int) bool {
	return bytes[index>>3]&(1<<uint(index&7)) != 0
}

func setBit(bytes []byte, index int, value bool) {
	if value {
		bytes[index>>3] |= 1 << uint(index&7)
	} else {
		bytes[index>>3] &^= 1 << uint(index&7)
	}
}

// swapBits exchanges n bits starting at aStart in a with n bits starting at
// bStart in b, one bit at a time.
func swapBits(a []byte, aStart int, b []byte, bStart int, n int) {
	for i := 0; i < n; i++ {
		av := getBit(a, aStart+i)
		bv := getBit(b, bStart+i)
		setBit(a, aStart+i, bv)
		setBit(b, bStart+i, av)
	}
}

// swapRange exchanges bits [aStart, aEnd) of a with the equally long run
// starting at bStart in b. When both runs share bit alignment the interior is
// exchanged whole bytes at a time; the misaligned head and tail fall back to
// the per-bit loop.
func swapRange(a []byte, aStart, aEnd int, b []byte, bStart int) {
	n := aEnd - aStart
	if n <= 0 {
		return
	}
	if aStart&7 != bStart&7 {
		swapBits(a, aStart, b, bStart, n)
		return
	}

	// Head up to the next byte boundary.
	head := (8 - aStart&7) & 7
	if head > n {
		head = n
	}
	swapBits(a, aStart, b, bStart, head)
	aStart += head
	bStart += head
	n -= head

	for ; n >= 8; n -= 8 {
		ai, bi := aStart>>3, bStart>>3
		a[ai], b[bi] = b[bi], a[ai]
		aStart += 8
		bStart += 8
	}

	swapBits(a, aStart, b, bStart, n)
}
