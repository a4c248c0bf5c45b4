package axdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

func TestEncodeScalarTags(t *testing.T) {
	cases := []struct {
		name string
		d    Data
		want []byte
	}{
		{"null", Null(), []byte{0x00}},
		{"boolean-true", NewBoolean(true), []byte{0x03, 0x01}},
		{"boolean-false", NewBoolean(false), []byte{0x03, 0x00}},
		{"double-long-unsigned", NewDoubleLongUnsigned(123456), []byte{0x06, 0x00, 0x01, 0xE2, 0x40}},
		{"long-unsigned", NewLongUnsigned(0x00FF), []byte{0x12, 0x00, 0xFF}},
		{"unsigned", NewUnsigned(0xFF), []byte{0x11, 0xFF}},
		{"integer-negative", NewInteger(-1), []byte{0x0F, 0xFF}},
		{"octet-string", NewOctetString([]byte{0x01, 0x00, 0x01, 0x08, 0x00, 0xFF}), []byte{0x09, 0x06, 0x01, 0x00, 0x01, 0x08, 0x00, 0xFF}},
		{"enum", NewEnum(2), []byte{0x16, 0x02}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.d)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMatchesEncode(t *testing.T) {
	original := NewStructure(
		NewDoubleLongUnsigned(123456),
		NewInteger(-2),
		NewOctetString([]byte{0xAA, 0xBB}),
		NewBoolean(true),
	)
	encoded, err := Encode(original)
	require.NoError(t, err)

	got, rest, err := Parse(encoded)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, original, got)
}

func TestParseIncompleteIsDistinguishable(t *testing.T) {
	_, _, err := Parse([]byte{0x06, 0x00, 0x01}) // double-long-unsigned needs 4 octets, got 2
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindIncomplete))
}

func TestParseInvalidTag(t *testing.T) {
	_, _, err := Parse([]byte{0x7F})
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}

func TestEmptyArrayAndStructureAreLegal(t *testing.T) {
	for _, d := range []Data{NewArray(), NewStructure()} {
		encoded, err := Encode(d)
		require.NoError(t, err)
		got, rest, err := Parse(encoded)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, d, got)
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	dt := NewDateTime(DateTime{
		Date:        Date{Year: 2024, Month: 3, DayOfMonth: 15, DayOfWeek: 5},
		Time:        Time{Hour: 10, Minute: 30, Second: 0, Hundredths: 0},
		Offset:      60,
		ClockStatus: 0,
	})
	encoded, err := Encode(dt)
	require.NoError(t, err)
	assert.Len(t, encoded, 1+12)

	got, rest, err := Parse(encoded)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, dt, got)
}

func TestCompactArrayOfScalarsRoundTrip(t *testing.T) {
	original := NewCompactArray(CompactArray{
		ElementTag: TagLongUnsigned,
		Elements: []Data{
			NewLongUnsigned(1),
			NewLongUnsigned(2),
			NewLongUnsigned(3),
		},
	})
	encoded, err := Encode(original)
	require.NoError(t, err)

	got, rest, err := Parse(encoded)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, original, got)
}

// genData builds a bounded-depth, bounded-width Data tree for property-based
// round-trip testing.
func genData(t *rapid.T, depth int) Data {
	if depth <= 0 {
		return NewLongUnsigned(uint16(rapid.IntRange(0, 0xFFFF).Draw(t, "u16")))
	}
	switch rapid.IntRange(0, 4).Draw(t, "kind") {
	case 0:
		return NewDoubleLongUnsigned(uint32(rapid.IntRange(0, 1<<31).Draw(t, "u32")))
	case 1:
		return NewOctetString(rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "octets"))
	case 2:
		return NewBoolean(rapid.Bool().Draw(t, "b"))
	case 3:
		n := rapid.IntRange(0, 3).Draw(t, "n")
		elems := make([]Data, n)
		for i := range elems {
			elems[i] = genData(t, depth-1)
		}
		return NewStructure(elems...)
	default:
		return NewInteger(int8(rapid.IntRange(-128, 127).Draw(t, "i8")))
	}
}

func TestEncodeParseRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genData(rt, 3)
		encoded, err := Encode(d)
		if err != nil {
			rt.Fatalf("encode: %v", err)
		}
		got, rest, err := Parse(encoded)
		if err != nil {
			rt.Fatalf("parse: %v", err)
		}
		if len(rest) != 0 {
			rt.Fatalf("leftover bytes: %v", rest)
		}
		if !dataEqual(d, got) {
			rt.Fatalf("round-trip mismatch: %+v != %+v", d, got)
		}
	})
}

func dataEqual(a, b Data) bool {
	encA, errA := Encode(a)
	encB, errB := Encode(b)
	if errA != nil || errB != nil {
		return false
	}
	if len(encA) != len(encB) {
		return false
	}
	for i := range encA {
		if encA[i] != encB[i] {
			return false
		}
	}
	return true
}
