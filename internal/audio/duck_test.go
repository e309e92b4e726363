package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSinkInputs = `Sink Input #42
	Driver: protocol-native.c
	Sample Specification: float32le 2ch 48000Hz
	Volume: front-left: 52428 /  80% / -5.81 dB,   front-right: 52428 /  80% / -5.81 dB
	Properties:
		application.name = "Firefox"
		media.name = "AudioStream"
Sink Input #57
	Driver: protocol-native.c
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "jarvis"
`

func TestParseSinkInputs(t *testing.T) {
	streams := parseSinkInputs(sampleSinkInputs)
	require.Len(t, streams, 2)

	assert.Equal(t, 42, streams[0].ID)
	assert.Equal(t, 80, streams[0].Volume)
	assert.Equal(t, "Firefox", streams[0].AppName)

	assert.Equal(t, 57, streams[1].ID)
	assert.Equal(t, 100, streams[1].Volume)
	assert.Equal(t, "jarvis", streams[1].AppName)
}

func TestParseSinkInputsEmpty(t *testing.T) {
	assert.Nil(t, parseSinkInputs(""))
	assert.Nil(t, parseSinkInputs("No sink inputs found."))
}

func TestSelfStreamExcluded(t *testing.T) {
	d := NewDucker([]string{"jarvis"}, 10)
	streams := parseSinkInputs(sampleSinkInputs)

	assert.False(t, d.isSelfStream(streams[0]))
	assert.True(t, d.isSelfStream(streams[1]))
}
