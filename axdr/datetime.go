package axdr

// Date is the 5-octet composite date. A field equal to its sentinel means
// "not specified".
type Date struct {
	Year       uint16 // 0xFFFF = unspecified
	Month      uint8  // 0xFF = unspecified
	DayOfMonth uint8  // 0xFF = unspecified
	DayOfWeek  uint8  // 0xFF = unspecified
}

// YearUnspecified, MonthUnspecified etc. are the Date sentinel values.
const (
	YearUnspecified       uint16 = 0xFFFF
	MonthUnspecified      uint8  = 0xFF
	DayOfMonthUnspecified uint8  = 0xFF
	DayOfWeekUnspecified  uint8  = 0xFF
)

func (d Date) bytes() []byte {
	return []byte{
		byte(d.Year >> 8), byte(d.Year),
		d.Month, d.DayOfMonth, d.DayOfWeek,
	}
}

func parseDate(b []byte) Date {
	return Date{
		Year:       uint16(b[0])<<8 | uint16(b[1]),
		Month:      b[2],
		DayOfMonth: b[3],
		DayOfWeek:  b[4],
	}
}

// Time is the 4-octet composite time of day. A field equal to 0xFF means
// "not specified".
type Time struct {
	Hour       uint8
	Minute     uint8
	Second     uint8
	Hundredths uint8
}

// HourUnspecified etc. are the Time sentinel values.
const (
	HourUnspecified       uint8 = 0xFF
	MinuteUnspecified     uint8 = 0xFF
	SecondUnspecified     uint8 = 0xFF
	HundredthsUnspecified uint8 = 0xFF
)

func (t Time) bytes() []byte {
	return []byte{t.Hour, t.Minute, t.Second, t.Hundredths}
}

func parseTime(b []byte) Time {
	return Time{Hour: b[0], Minute: b[1], Second: b[2], Hundredths: b[3]}
}

// DateTimeOffsetUnspecified is the DateTime sentinel for an unknown
// minute-offset-from-UTC.
const DateTimeOffsetUnspecified int16 = -0x8000

// DateTime is Date‖Time‖offset‖clock-status, 12 octets total.
type DateTime struct {
	Date        Date
	Time        Time
	Offset      int16 // minutes from UTC, DateTimeOffsetUnspecified = unspecified
	ClockStatus uint8
}

func (dt DateTime) bytes() []byte {
	b := make([]byte, 0, 12)
	b = append(b, dt.Date.bytes()...)
	b = append(b, dt.Time.bytes()...)
	b = append(b, byte(uint16(dt.Offset)>>8), byte(uint16(dt.Offset)))
	b = append(b, dt.ClockStatus)
	return b
}

func parseDateTime(b []byte) DateTime {
	return DateTime{
		Date:        parseDate(b[0:5]),
		Time:        parseTime(b[5:9]),
		Offset:      int16(uint16(b[9])<<8 | uint16(b[10])),
		ClockStatus: b[11],
	}
}
