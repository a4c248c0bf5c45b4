package cosem

import (
	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

// dataClassID and dataVersion are fixed per the Blue Book's Data
// interface class (class id 1, version 0).
const (
	dataClassID uint16 = 1
	dataVersion uint8  = 0
)

// Data is COSEM Interface Class 1: a single generic attribute value keyed
// by an OBIS logical name.
type Data struct {
	logicalName obis.Code
	Value       axdr.Data
}

// NewData builds a Data object holding value.
func NewData(logicalName obis.Code, value axdr.Data) *Data {
	return &Data{logicalName: logicalName, Value: value}
}

func (d *Data) ClassID() uint16        { return dataClassID }
func (d *Data) Version() uint8         { return dataVersion }
func (d *Data) LogicalName() obis.Code { return d.logicalName }

// GetAttribute returns attribute 1 (logical name, as an OctetString) or
// attribute 2 (the held value).
func (d *Data) GetAttribute(id int8) (axdr.Data, error) {
	switch id {
	case 1:
		return axdr.NewOctetString(d.logicalName.Bytes()), nil
	case 2:
		return d.Value, nil
	default:
		return axdr.Data{}, errObjectUndefined
	}
}

// SetAttribute writes attribute 2; attribute 1 (logical name) is read-only.
func (d *Data) SetAttribute(id int8, v axdr.Data) error {
	switch id {
	case 1:
		return errReadWriteDenied
	case 2:
		d.Value = v
		return nil
	default:
		return errObjectUndefined
	}
}
