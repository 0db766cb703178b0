package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runState is a struct for round-trip codec testing.
type runState struct {
	Label  string      `json:"label"`
	Steps  int         `json:"steps"`
	Corner [][]float64 `json:"corner"`
}

func sampleState() runState {
	return runState{
		Label:  "circle",
		Steps:  20,
		Corner: [][]float64{{0, 0}, {0.5, 0.25}, {2, 2}},
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	codecs := map[string]Codec{
		"json":     NewJSONCodec(),
		"compact":  &JSONCodec{},
		"gob":      NewGobCodec(),
		"lz4+gob":  NewLZ4Codec(NewGobCodec()),
		"lz4+json": NewLZ4Codec(NewJSONCodec()),
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			original := sampleState()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, original))

			var decoded runState

			require.NoError(t, codec.Decode(&buf, &decoded))
			assert.Equal(t, original, decoded)
		})
	}
}

func TestCodecs_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
	assert.Equal(t, ".gob", NewGobCodec().Extension())
	assert.Equal(t, ".gob.lz4", NewLZ4Codec(NewGobCodec()).Extension())
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	var pretty, compact bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&pretty, sampleState()))
	require.NoError(t, (&JSONCodec{}).Encode(&compact, sampleState()))

	assert.Contains(t, pretty.String(), defaultIndent)
	assert.LessOrEqual(t, strings.Count(compact.String(), "\n"), 1)
}

func TestCodecs_DecodeError(t *testing.T) {
	t.Parallel()

	var decoded runState

	err := NewJSONCodec().Decode(strings.NewReader("not valid json{{{"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")

	err = NewGobCodec().Decode(strings.NewReader("not gob data"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gob decode")

	err = NewLZ4Codec(NewGobCodec()).Decode(strings.NewReader("not an lz4 frame"), &decoded)
	require.Error(t, err)
}

func TestCodecs_EncodeError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	// Channels cannot be JSON-encoded.
	err := NewJSONCodec().Encode(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")

	// Functions cannot be gob-encoded.
	err = NewLZ4Codec(NewGobCodec()).Encode(&buf, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gob encode")
}
