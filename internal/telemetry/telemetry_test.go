package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame() Frame {
	return Frame{
		Tick:     42,
		TNowUS:   1_234_567,
		TStartUS: 1_000_000,
		Mode:     2,
		B:        [3]float32{100.5, -50.25, 10},
		Bdot:     [3]float32{1, 2, 3},
		W:        [3]float32{0.1, 0.2, 0.3},
		S:        [3]float32{0, 0, 1},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := sampleFrame()
	f.StructuralFailures = 3

	decoded, err := Decode(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestEncodeStartsWithBeginMarker(t *testing.T) {
	data := sampleFrame().Encode()
	assert.Equal(t, "FBEGIN", string(data[:6]))
}

func TestEncodeContainsEndMarkerBeforeStructuralFailures(t *testing.T) {
	f := sampleFrame()
	f.StructuralFailures = 0xABCD
	data := f.Encode()
	// FEND appears 4 bytes before the trailing 4-byte StructuralFailures field.
	endOffset := len(data) - 4 - 4
	assert.Equal(t, "FEND", string(data[endOffset:endOffset+4]))
}

func TestDecodeRejectsMissingBeginMarker(t *testing.T) {
	data := sampleFrame().Encode()
	data[0] = 'X'
	_, err := Decode(data)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	data := sampleFrame().Encode()
	_, err := Decode(data[:10])
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptEndMarker(t *testing.T) {
	data := sampleFrame().Encode()
	data[len(data)-5] = 'X' // last byte of FEND before StructuralFailures
	_, err := Decode(data)
	assert.Error(t, err)
}
