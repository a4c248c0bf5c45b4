package mbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

func TestTelegramRoundTrip(t *testing.T) {
	tg := Telegram{
		Control:            0x53,
		Address:            0x01,
		ControlInformation: 0x61,
		UserData:           []byte{0x00, 0x00, 0x00, 0xC0, 0x01, 0x00},
	}
	enc := EncodeTelegram(tg)
	assert.Equal(t, startByte, enc[0])
	assert.Equal(t, stopByte, enc[len(enc)-1])

	got, rest, err := DecodeTelegram(enc)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, tg, got)
}

func TestDecodeTelegramRejectsBadChecksum(t *testing.T) {
	tg := Telegram{Control: 0x53, Address: 0x01, ControlInformation: 0x61, UserData: []byte{0x01, 0x02, 0x03}}
	enc := EncodeTelegram(tg)
	enc[len(enc)-2] ^= 0xFF

	_, _, err := DecodeTelegram(enc)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindChecksumMismatch))
}

func TestDecodeTelegramRejectsBadStart(t *testing.T) {
	tg := Telegram{Control: 0x53, Address: 0x01, ControlInformation: 0x61, UserData: []byte{0x01}}
	enc := EncodeTelegram(tg)
	enc[0] = 0x00

	_, _, err := DecodeTelegram(enc)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}

func TestParseControlInformationSegmented(t *testing.T) {
	ci, err := ParseControlInformation(0x00)
	require.NoError(t, err)
	assert.True(t, ci.Segmented)
	assert.Equal(t, byte(0), ci.Segment)
	assert.False(t, ci.LastSegment)

	ci, err = ParseControlInformation(0x1F)
	require.NoError(t, err)
	assert.Equal(t, byte(15), ci.Segment)
	assert.True(t, ci.LastSegment)
}

func TestParseControlInformationUnsegmented(t *testing.T) {
	ci, err := ParseControlInformation(0x60)
	require.NoError(t, err)
	assert.False(t, ci.Segmented)
	assert.Equal(t, HeaderLong, ci.Header)
	assert.Equal(t, DirectionMasterSlave, ci.Direction)

	ci, err = ParseControlInformation(0x7D)
	require.NoError(t, err)
	assert.Equal(t, HeaderShort, ci.Header)
	assert.Equal(t, DirectionSlaveMaster, ci.Direction)
}

func TestParseControlInformationRejectsUnknown(t *testing.T) {
	_, err := ParseControlInformation(0x62)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}

func TestNextMessageUnsegmentedLongHeader(t *testing.T) {
	apdu := []byte{0xC0, 0x01, 0x00}
	userData := append([]byte{
		0x4D, 0x4D, 0x00, // manufacturer id, version, device type
		0x01, 0x00, 0x00, // access number, status, config word
	}, apdu...)
	frames := []Telegram{{ControlInformation: 0x60, UserData: userData}}

	payload, rest, err := NextMessage(frames)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, apdu, payload)
}

func TestNextMessageUnsegmentedShortHeader(t *testing.T) {
	apdu := []byte{0xC4, 0x01}
	userData := append([]byte{0x01, 0x00, 0x00}, apdu...)
	frames := []Telegram{{ControlInformation: 0x61, UserData: userData}}

	payload, rest, err := NextMessage(frames)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, apdu, payload)
}

func TestNextMessageSegmentedTwoTelegrams(t *testing.T) {
	frames := []Telegram{
		{ControlInformation: 0x00, UserData: []byte{0xAA, 0xBB, 0x01, 0x02}},
		{ControlInformation: 0x11, UserData: []byte{0xAA, 0xBB, 0x03, 0x04}},
	}

	payload, rest, err := NextMessage(frames)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, payload)
}

func TestNextMessageSegmentedOutOfOrderFails(t *testing.T) {
	frames := []Telegram{
		{ControlInformation: 0x00, UserData: []byte{0xAA, 0xBB, 0x01}},
		{ControlInformation: 0x12, UserData: []byte{0xAA, 0xBB, 0x02}}, // segment 2, expected 1
	}

	_, _, err := NextMessage(frames)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindChecksumMismatch))
}

func TestNextMessageSegmentedIncomplete(t *testing.T) {
	frames := []Telegram{{ControlInformation: 0x00, UserData: []byte{0xAA, 0xBB, 0x01}}}

	_, _, err := NextMessage(frames)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindIncomplete))
}

func TestNextMessageConsumesOneMessageAtATime(t *testing.T) {
	frames := []Telegram{
		{ControlInformation: 0x61, UserData: []byte{0x01, 0x00, 0x00, 0x11}},
		{ControlInformation: 0x61, UserData: []byte{0x01, 0x00, 0x00, 0x22}},
	}

	payload1, rest, err := NextMessage(frames)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, []byte{0x11}, payload1)

	payload2, rest, err := NextMessage(rest)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []byte{0x22}, payload2)
}
