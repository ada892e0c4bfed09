package clients

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

func TestDecodeRecords(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		records := []json.RawMessage{
			json.RawMessage(`{"attributes":{"type":"Account"},"Id":"001A","Name":"Acme"}`),
			json.RawMessage(`{"Id":"001B","Name":"Globex"}`),
		}

		decoded, err := DecodeRecords[testRecord](records)

		require.NoError(t, err)
		assert.Equal(t, []testRecord{{ID: "001A", Name: "Acme"}, {ID: "001B", Name: "Globex"}}, decoded)
	})

	t.Run("Empty", func(t *testing.T) {
		decoded, err := DecodeRecords[testRecord](nil)

		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		_, err := DecodeRecords[testRecord]([]json.RawMessage{json.RawMessage(`{"Id":`)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode record 0")
	})
}
