package helper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyPrint(&buf, map[string]int{"chunks": 2}))
	assert.Equal(t, "{\n  \"chunks\": 2\n}\n", buf.String())
}

func TestPrettyPrint_MarshalError(t *testing.T) {
	var buf bytes.Buffer
	err := PrettyPrint(&buf, map[string]any{"c": make(chan int)})
	assert.ErrorContains(t, err, "pretty print")
	assert.Empty(t, buf.String())
}

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	require.NoError(t, err)
	b, err := GenerateUUID()
	require.NoError(t, err)
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
