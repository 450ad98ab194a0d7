package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeysAndStripsWhitespace(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{"b": 2, "a": 1, "nested": map[string]any{"z": true, "y": nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"nested":{"y":null,"z":true}}`, string(got))
}

func TestCanonicalJSON_EscapesNonASCII(t *testing.T) {
	got, err := CanonicalJSON(map[string]string{"msg": "café"})
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"caf\u00e9"}`, string(got))
}

func TestCanonicalJSON_PreservesIntegers(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{"cash": 1500, "ts_ms": int64(1700000000000)})
	require.NoError(t, err)
	assert.Equal(t, `{"cash":1500,"ts_ms":1700000000000}`, string(got))
}

func TestCanonicalJSON_Deterministic(t *testing.T) {
	snap := BuildSnapshot("run-1", NewGameState([]*PlayerState{
		{ID: "p1", Name: "Uno", Cash: InitialCash},
		{ID: "p2", Name: "Dos", Cash: InitialCash},
	}))
	a, err := CanonicalJSON(snap)
	require.NoError(t, err)
	b, err := CanonicalJSON(snap)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
