package cosem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

func TestDataObjectClassIDAndVersion(t *testing.T) {
	obj := NewData(obis.New(0, 0, 96, 1, 0, 255), axdr.NewUnsigned(42))
	assert.Equal(t, uint16(1), obj.ClassID())
	assert.Equal(t, uint8(0), obj.Version())
}

func TestDataObjectGetAttributeLogicalName(t *testing.T) {
	code := obis.New(0, 0, 96, 1, 0, 255)
	obj := NewData(code, axdr.NewUnsigned(42))

	v, err := obj.GetAttribute(1)
	require.NoError(t, err)
	assert.Equal(t, axdr.NewOctetString(code.Bytes()), v)
}

func TestDataObjectGetSetAttributeValue(t *testing.T) {
	obj := NewData(obis.New(0, 0, 96, 1, 0, 255), axdr.NewUnsigned(42))

	v, err := obj.GetAttribute(2)
	require.NoError(t, err)
	assert.Equal(t, axdr.NewUnsigned(42), v)

	require.NoError(t, obj.SetAttribute(2, axdr.NewUnsigned(100)))
	v, err = obj.GetAttribute(2)
	require.NoError(t, err)
	assert.Equal(t, axdr.NewUnsigned(100), v)
}

func TestDataObjectSetLogicalNameDenied(t *testing.T) {
	obj := NewData(obis.New(0, 0, 96, 1, 0, 255), axdr.NewUnsigned(42))
	err := obj.SetAttribute(1, axdr.NewOctetString([]byte{1, 2, 3, 4, 5, 6}))
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindDataAccessResult))
}

func TestDataObjectUndefinedAttribute(t *testing.T) {
	obj := NewData(obis.New(0, 0, 96, 1, 0, 255), axdr.Data{})
	_, err := obj.GetAttribute(5)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindDataAccessResult))
}

func TestRegisterScaledValue(t *testing.T) {
	reg := NewRegister(
		obis.New(1, 0, 1, 8, 0, 255),
		axdr.NewDoubleLongUnsigned(123456),
		obis.ScalerUnit{Scaler: -3, Unit: obis.WattHour},
	)
	assert.Equal(t, uint16(3), reg.ClassID())
	assert.InDelta(t, 123.456, reg.ScaledValue(), 0.0001)
}

func TestRegisterGetAttributeScalerUnit(t *testing.T) {
	reg := NewRegister(
		obis.New(1, 0, 1, 8, 0, 255),
		axdr.NewDoubleLongUnsigned(12345),
		obis.ScalerUnit{Scaler: -2, Unit: obis.WattHour},
	)
	v, err := reg.GetAttribute(3)
	require.NoError(t, err)
	require.Equal(t, axdr.TagStructure, v.Tag)
	require.Len(t, v.Elements, 2)
	assert.Equal(t, int64(-2), v.Elements[0].Int)
	assert.Equal(t, uint64(obis.WattHour), v.Elements[1].Uint)
}

func TestRegisterSetAttributeScalerUnitRoundTrip(t *testing.T) {
	reg := NewRegister(obis.New(1, 0, 1, 8, 0, 255), axdr.NewDoubleLongUnsigned(0), obis.ScalerUnit{})
	v, err := reg.GetAttribute(3)
	require.NoError(t, err)

	other := NewRegister(obis.New(1, 0, 1, 8, 0, 255), axdr.NewDoubleLongUnsigned(0), obis.ScalerUnit{Scaler: -3, Unit: obis.WattHour})
	otherAttr, err := other.GetAttribute(3)
	require.NoError(t, err)

	require.NoError(t, reg.SetAttribute(3, otherAttr))
	got, err := reg.GetAttribute(3)
	require.NoError(t, err)
	assert.Equal(t, otherAttr, got)
	assert.NotEqual(t, v, got)
}

func TestRegisterSetAttributeValueRejectsNonNumeric(t *testing.T) {
	reg := NewRegister(obis.New(1, 0, 1, 8, 0, 255), axdr.NewDoubleLongUnsigned(0), obis.ScalerUnit{})
	err := reg.SetAttribute(2, axdr.NewStructure())
	require.Error(t, err)
}

func TestObjectInterfaceSatisfiedByDataAndRegister(t *testing.T) {
	var _ Object = NewData(obis.New(0, 0, 96, 1, 0, 255), axdr.Data{})
	var _ Object = NewRegister(obis.New(1, 0, 1, 8, 0, 255), axdr.Data{}, obis.ScalerUnit{})
}
