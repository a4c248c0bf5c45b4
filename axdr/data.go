package axdr

// BitString is a bit sequence: NumBits bits packed MSB-first into ceil(bits/8)
// octets.
type BitString struct {
	NumBits int
	Bytes   []byte
}

// CompactArray is tag 0x13: a type descriptor shared by every element,
// followed by a length-prefixed contiguous block of element payloads with
// their individual tag octets omitted. StructFields holds the per-field tags
// when ElementTag is TagStructure; it is nil for a compact array of scalars.
type CompactArray struct {
	ElementTag   Tag
	StructFields []Tag
	Elements     []Data
}

// Data is the A-XDR typed value tree: exactly one field below is meaningful,
// selected by Tag. This mirrors the protocol's own discriminated-variant
// shape without needing a sum type.
type Data struct {
	Tag Tag

	Bool      bool
	Bytes     []byte // OctetString, VisibleString, Utf8String (ASCII/UTF-8 bytes)
	Int       int64  // DoubleLong, Integer, Long, Long64
	Uint      uint64 // DoubleLongUnsigned, Unsigned, LongUnsigned, Long64Unsigned, Enum, Bcd
	Float32   float32
	Float64   float64
	BitString BitString
	Elements  []Data // Array, Structure
	Compact   *CompactArray
	Date      Date
	Time      Time
	DateTime  DateTime
}

// Null is the tag-0x00 value.
func Null() Data { return Data{Tag: TagNull} }

// NewArray builds an Array (tag 0x01) from its elements.
func NewArray(elems ...Data) Data { return Data{Tag: TagArray, Elements: elems} }

// NewStructure builds a Structure (tag 0x02) from its elements.
func NewStructure(elems ...Data) Data { return Data{Tag: TagStructure, Elements: elems} }

// NewBoolean builds a Boolean (tag 0x03).
func NewBoolean(v bool) Data { return Data{Tag: TagBoolean, Bool: v} }

// NewBitString builds a BitString (tag 0x04).
func NewBitString(numBits int, bytes []byte) Data {
	return Data{Tag: TagBitString, BitString: BitString{NumBits: numBits, Bytes: bytes}}
}

// NewDoubleLong builds a DoubleLong (tag 0x05, i32).
func NewDoubleLong(v int32) Data { return Data{Tag: TagDoubleLong, Int: int64(v)} }

// NewDoubleLongUnsigned builds a DoubleLongUnsigned (tag 0x06, u32).
func NewDoubleLongUnsigned(v uint32) Data { return Data{Tag: TagDoubleLongUnsigned, Uint: uint64(v)} }

// NewOctetString builds an OctetString (tag 0x09).
func NewOctetString(b []byte) Data { return Data{Tag: TagOctetString, Bytes: b} }

// NewVisibleString builds a VisibleString (tag 0x0A).
func NewVisibleString(s string) Data { return Data{Tag: TagVisibleString, Bytes: []byte(s)} }

// NewUtf8String builds a Utf8String (tag 0x0C).
func NewUtf8String(s string) Data { return Data{Tag: TagUtf8String, Bytes: []byte(s)} }

// NewBcd builds a Bcd (tag 0x0D, single octet).
func NewBcd(v byte) Data { return Data{Tag: TagBcd, Uint: uint64(v)} }

// NewInteger builds an Integer (tag 0x0F, i8).
func NewInteger(v int8) Data { return Data{Tag: TagInteger, Int: int64(v)} }

// NewLong builds a Long (tag 0x10, i16).
func NewLong(v int16) Data { return Data{Tag: TagLong, Int: int64(v)} }

// NewUnsigned builds an Unsigned (tag 0x11, u8).
func NewUnsigned(v uint8) Data { return Data{Tag: TagUnsigned, Uint: uint64(v)} }

// NewLongUnsigned builds a LongUnsigned (tag 0x12, u16).
func NewLongUnsigned(v uint16) Data { return Data{Tag: TagLongUnsigned, Uint: uint64(v)} }

// NewCompactArray builds a CompactArray (tag 0x13).
func NewCompactArray(c CompactArray) Data { return Data{Tag: TagCompactArray, Compact: &c} }

// NewLong64 builds a Long64 (tag 0x14, i64).
func NewLong64(v int64) Data { return Data{Tag: TagLong64, Int: v} }

// NewLong64Unsigned builds a Long64Unsigned (tag 0x15, u64).
func NewLong64Unsigned(v uint64) Data { return Data{Tag: TagLong64Unsigned, Uint: v} }

// NewEnum builds an Enum (tag 0x16, u8).
func NewEnum(v uint8) Data { return Data{Tag: TagEnum, Uint: uint64(v)} }

// NewFloat32 builds a Float32 (tag 0x17, IEEE 754 single).
func NewFloat32(v float32) Data { return Data{Tag: TagFloat32, Float32: v} }

// NewFloat64 builds a Float64 (tag 0x18, IEEE 754 double).
func NewFloat64(v float64) Data { return Data{Tag: TagFloat64, Float64: v} }

// NewDateTime builds a DateTime (tag 0x19).
func NewDateTime(v DateTime) Data { return Data{Tag: TagDateTime, DateTime: v} }

// NewDate builds a Date (tag 0x1A).
func NewDate(v Date) Data { return Data{Tag: TagDate, Date: v} }

// NewTime builds a Time (tag 0x1B).
func NewTime(v Time) Data { return Data{Tag: TagTime, Time: v} }

// IsNumeric reports whether d's variant is an integer or float quantity.
func (d Data) IsNumeric() bool { return d.Tag.IsNumeric() }

// AsFloat64 widens any numeric variant to float64. The second return is
// false for a non-numeric Data.
func (d Data) AsFloat64() (float64, bool) {
	switch d.Tag {
	case TagDoubleLong, TagInteger, TagLong, TagLong64:
		return float64(d.Int), true
	case TagDoubleLongUnsigned, TagUnsigned, TagLongUnsigned, TagLong64Unsigned, TagEnum:
		return float64(d.Uint), true
	case TagFloat32:
		return float64(d.Float32), true
	case TagFloat64:
		return d.Float64, true
	default:
		return 0, false
	}
}
