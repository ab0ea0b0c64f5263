package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/model"
)

// encodeMetadata renders a metadata map as the JSONB document stored in the
// metadata columns. A nil map encodes as the empty object, matching the
// column default.
func encodeMetadata(m model.Metadata) ([]byte, error) {
	if m == nil {
		m = model.Metadata{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return raw, nil
}

// decodeMetadata parses a stored JSONB document back into a metadata map.
// Encoding and decoding round-trip losslessly at the JSON level; note that
// numeric values come back as float64.
func decodeMetadata(raw []byte) (model.Metadata, error) {
	if len(raw) == 0 {
		return model.Metadata{}, nil
	}
	var m model.Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}
