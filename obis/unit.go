package obis

// Unit is the single-octet physical unit code defined by IEC 62056-62.
// The table is non-exhaustive by design: meters occasionally report codes
// outside it (manufacturer extensions, reserved ranges) and those must
// still round-trip as the raw code rather than fail to parse.
type Unit byte

// Defined physical units. Gaps (58-59, 68-69, 73-253) are manufacturer or
// reserved ranges and intentionally have no named constant.
const (
	Year                       Unit = 1
	Month                      Unit = 2
	Week                       Unit = 3
	Day                        Unit = 4
	Hour                       Unit = 5
	Minute                     Unit = 6
	Second                     Unit = 7
	Degree                     Unit = 8
	DegreeCelsius              Unit = 9
	Currency                   Unit = 10
	Meter                      Unit = 11
	MeterPerSecond             Unit = 12
	CubicMeter                 Unit = 13
	CubicMeterCorrected        Unit = 14
	CubicMeterPerHour          Unit = 15
	CubicMeterPerHourCorrected Unit = 16
	CubicMeterPerDay           Unit = 17
	CubicMeterPerDayCorrected  Unit = 18
	Liter                      Unit = 19
	Kilogramm                  Unit = 20
	Newton                     Unit = 21
	Newtonmeter                Unit = 22
	Pascal                     Unit = 23
	Bar                        Unit = 24
	Joule                      Unit = 25
	JoulePerHour               Unit = 26
	Watt                       Unit = 27
	VoltAmpere                 Unit = 28
	Var                        Unit = 29
	WattHour                   Unit = 30
	VoltAmpereHour             Unit = 31
	VarHour                    Unit = 32
	Ampere                     Unit = 33
	Coulomb                    Unit = 34
	Volt                       Unit = 35
	VoltPerMeter               Unit = 36
	Farad                      Unit = 37
	Ohm                        Unit = 38
	OhmMeter                   Unit = 39
	Weber                      Unit = 40
	Tesla                      Unit = 41
	AmperePerMeter             Unit = 42
	Henry                      Unit = 43
	Hertz                      Unit = 44
	InverseWattHour            Unit = 45
	InverseVarHour             Unit = 46
	InverseVoltAmpereHour      Unit = 47
	VoltSquaredHour            Unit = 48
	AmpereSquaredHour          Unit = 49
	KilogrammPerSecond         Unit = 50
	Siemens                    Unit = 51
	Kelvin                     Unit = 52
	InverseVoltSquaredHour     Unit = 53
	InverseAmpereSquaredHour   Unit = 54
	InverseCubicMeter          Unit = 55
	Percent                    Unit = 56
	AmpereHour                 Unit = 57
	WattHourPerCubicMeter      Unit = 60
	JoulePerCubicMeter         Unit = 61
	MolePercent                Unit = 62
	GrammPerCubicMeter         Unit = 63
	PascalSecond               Unit = 64
	JoulePerKilogramm          Unit = 65
	GramPerSquareCentimeter    Unit = 66
	Atmosphere                 Unit = 67
	DezibelMilliwatt           Unit = 70
	DezibelMicrovolt           Unit = 71
	Dezibel                    Unit = 72
	// Other is the sentinel for a recognised-but-unmapped extended-table code.
	Other Unit = 254
	Count Unit = 255
)

var unitSymbol = map[Unit]string{
	Year:                       "a",
	Month:                      "mo",
	Week:                       "wk",
	Day:                        "d",
	Hour:                       "h",
	Minute:                     "min",
	Second:                     "s",
	Degree:                     "°",
	DegreeCelsius:              "°C",
	Currency:                   "currency",
	Meter:                      "m",
	MeterPerSecond:             "m/s",
	CubicMeter:                 "m³",
	CubicMeterCorrected:        "m³",
	CubicMeterPerHour:          "m³/h",
	CubicMeterPerHourCorrected: "m³/h",
	CubicMeterPerDay:           "m³/d",
	CubicMeterPerDayCorrected:  "m³/d",
	Liter:                      "l",
	Kilogramm:                  "kg",
	Newton:                     "N",
	Newtonmeter:                "Nm",
	Pascal:                     "Pa",
	Bar:                        "bar",
	Joule:                      "J",
	JoulePerHour:               "J/h",
	Watt:                       "W",
	VoltAmpere:                 "VA",
	Var:                        "var",
	WattHour:                   "Wh",
	VoltAmpereHour:             "VAh",
	VarHour:                    "varh",
	Ampere:                     "A",
	Coulomb:                    "C",
	Volt:                       "V",
	VoltPerMeter:               "V/m",
	Farad:                      "F",
	Ohm:                        "Ω",
	OhmMeter:                   "Ωm",
	Weber:                      "Wb",
	Tesla:                      "T",
	AmperePerMeter:             "A/m",
	Henry:                      "H",
	Hertz:                      "Hz",
	InverseWattHour:            "1/(Wh)",
	InverseVarHour:             "1/(varh)",
	InverseVoltAmpereHour:      "1/(VAh)",
	VoltSquaredHour:            "V²h",
	AmpereSquaredHour:          "A²h",
	KilogrammPerSecond:         "kg/s",
	Siemens:                    "S",
	Kelvin:                     "K",
	InverseVoltSquaredHour:     "1/(V²h)",
	InverseAmpereSquaredHour:   "1/(A²h)",
	InverseCubicMeter:          "1/m³",
	Percent:                    "%",
	AmpereHour:                 "Ah",
	WattHourPerCubicMeter:      "Wh/m³",
	JoulePerCubicMeter:         "J/m³",
	MolePercent:                "Mol %",
	GrammPerCubicMeter:         "g/m³",
	PascalSecond:               "Pa s",
	JoulePerKilogramm:          "J/kg",
	GramPerSquareCentimeter:    "g/cm²",
	Atmosphere:                 "atm",
	DezibelMilliwatt:           "dBm",
	DezibelMicrovolt:           "dBµV",
	Dezibel:                    "dB",
}

// Symbol returns the SI/abbreviated symbol for u, or "" if u is Other,
// Count, or an unrecognised/reserved code.
func (u Unit) Symbol() string {
	return unitSymbol[u]
}

// String renders the unit's symbol, or the empty string for unknown codes
// (Other, Count, and any reserved/manufacturer range).
func (u Unit) String() string {
	return u.Symbol()
}

// ScalerUnit pairs a base-10 exponent with a unit: a raw integer value
// ×10^Scaler yields the physical quantity.
type ScalerUnit struct {
	Scaler int8
	Unit   Unit
}

// Scale multiplies raw by 10^su.Scaler.
func (su ScalerUnit) Scale(raw float64) float64 {
	scale := 1.0
	n := su.Scaler
	neg := n < 0
	if neg {
		n = -n
	}
	for i := int8(0); i < n; i++ {
		scale *= 10
	}
	if neg {
		return raw / scale
	}
	return raw * scale
}
