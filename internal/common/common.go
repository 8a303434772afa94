package common

import (
	"math/big"
)

// CountNotNull reports how many positions in [from, to) are present.
// A nil bitmap means every position is present.
func CountNotNull(bits []byte, from, to int) int {
	if bits == nil {
		return to - from
	}
	n := 0
	for _, b := range bits[from:to] {
		if b != 0 {
			n++
		}
	}
	return n
}

// Int128 rebuilds the signed 128-bit integer (hi << 64) | lo.
func Int128(hi int64, lo uint64) *big.Int {
	v := big.NewInt(hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(lo))
}

// SplitInt128 is the inverse of Int128. Values outside the 128-bit range are truncated.
func SplitInt128(v *big.Int) (hi int64, lo uint64) {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo = new(big.Int).And(v, mask).Uint64()
	h := new(big.Int).Rsh(v, 64)
	return h.Int64(), lo
}

// Int128FromBytes reads a big-endian two's complement integer of at most 16 bytes.
func Int128FromBytes(b []byte) (hi int64, lo uint64, ok bool) {
	if len(b) > 16 {
		return 0, 0, false
	}
	var buf [16]byte
	fill := byte(0)
	if len(b) > 0 && b[0]&0x80 != 0 {
		fill = 0xff
	}
	for i := 0; i < 16-len(b); i++ {
		buf[i] = fill
	}
	copy(buf[16-len(b):], b)
	var h, l uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(buf[i])
		l = l<<8 | uint64(buf[8+i])
	}
	return int64(h), l, true
}

// SubClamp returns a-b, or 0 when b > a.
func SubClamp(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
