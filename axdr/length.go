package axdr

import "github.com/thinkgos/go-dlms-cosem/dlms"

// MaxRecursionDepth bounds how deeply Array/Structure/CompactArray nesting is
// followed on parse, per the data-model invariant that the tree is finite.
const MaxRecursionDepth = 32

// encodeLength appends the A-XDR length prefix for n to b. One octet < 0x80
// carries the length directly; otherwise the low 7 bits of the first octet
// count the big-endian length octets that follow.
func encodeLength(b []byte, n int) []byte {
	if n < 0x80 {
		return append(b, byte(n))
	}
	var tmp [8]byte
	i := len(tmp)
	for v := n; v > 0; v >>= 8 {
		i--
		tmp[i] = byte(v)
	}
	octets := tmp[i:]
	b = append(b, 0x80|byte(len(octets)))
	return append(b, octets...)
}

// decodeLength reads an A-XDR length prefix from b, returning the decoded
// length and the number of octets consumed.
func decodeLength(b []byte) (int, int, error) {
	if len(b) < 1 {
		return 0, 0, dlms.New(dlms.KindIncomplete, "axdr: length prefix truncated")
	}
	first := b[0]
	if first < 0x80 {
		return int(first), 1, nil
	}
	n := int(first &^ 0x80)
	if n == 0 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "axdr: length form 0x80 (indefinite) is not used")
	}
	if n > 4 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "axdr: length overflow, octet count too large")
	}
	if len(b) < 1+n {
		return 0, 0, dlms.New(dlms.KindIncomplete, "axdr: length octets truncated")
	}
	length := 0
	for i := 0; i < n; i++ {
		length = length<<8 | int(b[1+i])
	}
	return length, 1 + n, nil
}

// encodedLengthLen returns how many octets encodeLength(n) would emit.
func encodedLengthLen(n int) int {
	if n < 0x80 {
		return 1
	}
	octets := 0
	for v := n; v > 0; v >>= 8 {
		octets++
	}
	return 1 + octets
}

// EncodeOctetStringRaw renders b as a length-prefixed octet string with no
// leading type tag, the shape used by block-transfer raw-data fields that
// are not themselves tagged Data values.
func EncodeOctetStringRaw(b []byte) []byte {
	out := encodeLength(nil, len(b))
	return append(out, b...)
}

// DecodeOctetStringRaw reads a length-prefixed, untagged octet string,
// returning its payload and the unconsumed remainder.
func DecodeOctetStringRaw(b []byte) ([]byte, []byte, error) {
	n, used, err := decodeLength(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < used+n {
		return nil, nil, dlms.New(dlms.KindIncomplete, "axdr: raw octet string truncated")
	}
	return b[used : used+n], b[used+n:], nil
}
