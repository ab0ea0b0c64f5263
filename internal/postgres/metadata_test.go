package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

func TestMetadataEncoding(t *testing.T) {
	t.Run("nil encodes to an empty object", func(t *testing.T) {
		raw, err := encodeMetadata(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{}`), raw)
	})

	t.Run("empty column decodes to an empty map", func(t *testing.T) {
		meta, err := decodeMetadata(nil)
		require.NoError(t, err)
		assert.NotNil(t, meta)
		assert.Empty(t, meta)
	})

	t.Run("values survive a round trip with JSON number semantics", func(t *testing.T) {
		in := model.Metadata{"source": "web", "priority": 2, "nested": map[string]any{"a": true}}

		raw, err := encodeMetadata(in)
		require.NoError(t, err)
		out, err := decodeMetadata(raw)
		require.NoError(t, err)

		assert.Equal(t, "web", out["source"])
		assert.Equal(t, float64(2), out["priority"])
		assert.Equal(t, map[string]any{"a": true}, out["nested"])
	})
}
