package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		kind    FrameKind
		seq     uint8
	}{
		{"data", []byte("test"), KindData, 0},
		{"ack", nil, KindACK, 1},
		{"nack", nil, KindNACK, 7},
		{"max seq", []byte("hello world"), KindData, 7},
		{"payload contains sync byte", []byte{0x01, 0x7E, 0x7E, 0x02}, KindData, 4},
	}

	codec := NewHDLCCodec()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wire := codec.EncodeFrame(tc.payload, tc.kind, tc.seq)

			payload, kind, seq, consumed, err := codec.DecodeFrame(wire)
			require.NoError(t, err)
			require.Equal(t, len(wire), consumed)
			require.Equal(t, tc.kind, kind)
			require.Equal(t, tc.seq, seq)
			if diff := cmp.Diff(tc.payload, payload); diff != "" && len(tc.payload)+len(payload) > 0 {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeNoFrame(t *testing.T) {
	codec := NewHDLCCodec()
	_, _, _, _, err := codec.DecodeFrame([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, ErrNoFrame)
}

func TestDecodeFCSError(t *testing.T) {
	codec := NewHDLCCodec()
	wire := codec.EncodeFrame([]byte("test"), KindData, 3)
	wire[2] ^= 0xFF // flip a payload byte, corrupting the CRC

	_, _, seq, consumed, err := codec.DecodeFrame(wire)
	var fcsErr *FCSError
	require.ErrorAs(t, err, &fcsErr)
	require.Equal(t, uint8(3), seq)
	require.Equal(t, len(wire), consumed)
}

func TestDecodeBadKind(t *testing.T) {
	codec := NewHDLCCodec()
	wire := codec.EncodeFrame(nil, KindData, 2)
	// Force the kind bits to an unrecognized value (3) while keeping the
	// CRC consistent isn't possible without recomputing, so recompute here.
	wire[1] = packSeqKind(FrameKind(3), 2)
	crc := CRC16(wire[:len(wire)-trailerSize])
	wire[len(wire)-3] = byte(crc >> 8)
	wire[len(wire)-2] = byte(crc)

	_, kind, _, _, err := codec.DecodeFrame(wire)
	require.ErrorIs(t, err, ErrBadKind)
	require.Equal(t, FrameKind(3), kind)
}

// TestDecodeEmbeddedSyncByteDoesNotMisframeNextFrame guards against framing
// by scanning for the first 0x7E byte: a payload containing one must not be
// mistaken for the frame boundary, or the next frame in the buffer would be
// misparsed.
func TestDecodeEmbeddedSyncByteDoesNotMisframeNextFrame(t *testing.T) {
	codec := NewHDLCCodec()

	first := codec.EncodeFrame([]byte{0x7E, 0x7E}, KindData, 1)
	second := codec.EncodeFrame([]byte("next"), KindData, 2)
	buf := append(append([]byte{}, first...), second...)

	payload, kind, seq, consumed, err := codec.DecodeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, len(first), consumed)
	require.Equal(t, KindData, kind)
	require.Equal(t, uint8(1), seq)
	require.Equal(t, []byte{0x7E, 0x7E}, payload)

	payload, kind, seq, consumed, err = codec.DecodeFrame(buf[consumed:])
	require.NoError(t, err)
	require.Equal(t, len(second), consumed)
	require.Equal(t, KindData, kind)
	require.Equal(t, uint8(2), seq)
	require.Equal(t, []byte("next"), payload)
}

func TestCRC16Deterministic(t *testing.T) {
	a := CRC16([]byte("hello"))
	b := CRC16([]byte("hello"))
	require.Equal(t, a, b)

	c := CRC16([]byte("hellp"))
	require.NotEqual(t, a, c)
}
