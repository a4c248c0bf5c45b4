package cosem

import (
	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

// registerClassID and registerVersion are fixed per the Blue Book's
// Register interface class (class id 3, version 0).
const (
	registerClassID uint16 = 3
	registerVersion uint8  = 0
)

// Register is COSEM Interface Class 3: a numeric metered value with an
// associated scaler/unit. The physical quantity is Value × 10^ScalerUnit.Scaler.
type Register struct {
	logicalName obis.Code
	Value       axdr.Data
	ScalerUnit  obis.ScalerUnit
}

// NewRegister builds a Register object.
func NewRegister(logicalName obis.Code, value axdr.Data, scalerUnit obis.ScalerUnit) *Register {
	return &Register{logicalName: logicalName, Value: value, ScalerUnit: scalerUnit}
}

func (r *Register) ClassID() uint16        { return registerClassID }
func (r *Register) Version() uint8         { return registerVersion }
func (r *Register) LogicalName() obis.Code { return r.logicalName }

// ScaledValue returns Value widened to float64 and multiplied by
// 10^ScalerUnit.Scaler. Non-numeric values scale to 0.
func (r *Register) ScaledValue() float64 {
	raw, ok := r.Value.AsFloat64()
	if !ok {
		return 0
	}
	return r.ScalerUnit.Scale(raw)
}

// GetAttribute returns attribute 1 (logical name), 2 (value), or 3
// (scaler_unit, as a two-element Structure: Integer scaler, Enum unit).
func (r *Register) GetAttribute(id int8) (axdr.Data, error) {
	switch id {
	case 1:
		return axdr.NewOctetString(r.logicalName.Bytes()), nil
	case 2:
		return r.Value, nil
	case 3:
		return axdr.NewStructure(
			axdr.NewInteger(r.ScalerUnit.Scaler),
			axdr.NewEnum(uint8(r.ScalerUnit.Unit)),
		), nil
	default:
		return axdr.Data{}, errObjectUndefined
	}
}

// SetAttribute writes attribute 2 (must be numeric) or attribute 3 (must
// be a two-element Structure of Integer scaler and Enum unit); attribute
// 1 (logical name) is read-only.
func (r *Register) SetAttribute(id int8, v axdr.Data) error {
	switch id {
	case 1:
		return errReadWriteDenied
	case 2:
		if !v.IsNumeric() {
			return errTypeUnmatched
		}
		r.Value = v
		return nil
	case 3:
		if v.Tag != axdr.TagStructure || len(v.Elements) != 2 {
			return errTypeUnmatched
		}
		scaler, unit := v.Elements[0], v.Elements[1]
		if scaler.Tag != axdr.TagInteger || unit.Tag != axdr.TagEnum {
			return errTypeUnmatched
		}
		r.ScalerUnit = obis.ScalerUnit{Scaler: int8(scaler.Int), Unit: obis.Unit(unit.Uint)}
		return nil
	default:
		return errObjectUndefined
	}
}
