package snapshot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipCompression_Roundtrip(t *testing.T) {
	c := NewGzipCompressor()
	payload := []byte(`{"user1":["a","b"],"user2":["c"]}`)

	compressed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.NotEqual(t, payload, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, decompressed)
}

func TestGzipCompression_Empty(t *testing.T) {
	c := NewGzipCompressor()

	compressed, err := c.Compress(nil)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestGzipCompression_ShrinksRepetitiveInput(t *testing.T) {
	c := NewGzipCompressor()
	payload := bytes.Repeat([]byte("chatter_name "), 2000)

	compressed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(payload))
}

func TestGzipCompression_RejectsGarbage(t *testing.T) {
	c := NewGzipCompressor()
	_, err := c.Decompress([]byte("not a gzip stream"))
	assert.Error(t, err)
}
