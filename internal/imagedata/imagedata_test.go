package imagedata

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInlineImagePNG(t *testing.T) {
	blob, err := DecodeInlineImage("data:image/png;base64,AAAA")
	require.NoError(t, err)

	assert.Equal(t, "image/png", blob.MediaType)
	assert.Equal(t, []byte{0, 0, 0}, blob.Data)
}

func TestDecodeInlineImageSpansChunks(t *testing.T) {
	raw := bytes.Repeat([]byte{0xFF, 0xD8, 0x01, 0x7F, 0x42}, 1000)
	encoded := base64.StdEncoding.EncodeToString(raw)
	require.Greater(t, len(encoded), 3*chunkSize)

	blob, err := DecodeInlineImage("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", blob.MediaType)
	assert.Equal(t, raw, blob.Data)
}

func TestDecodeInlineImageUnpadded(t *testing.T) {
	blob, err := DecodeInlineImage("data:image/gif;base64,AQI")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, blob.Data)
}

func TestDecodeInlineImageMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no comma", data: "data:image/png;base64AAAA"},
		{name: "no media type", data: "data:;base64,AAAA"},
		{name: "invalid base64", data: "data:image/png;base64,!!!!"},
		{name: "empty payload", data: "data:image/png;base64,"},
		{name: "empty string", data: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := DecodeInlineImage(tt.data)
			assert.ErrorIs(t, err, ErrMalformedInline)
			assert.Nil(t, blob)
		})
	}
}

func TestNormalizeBinaryPassesThrough(t *testing.T) {
	in := &Blob{Data: []byte("raw"), MediaType: "image/webp"}

	out, err := Normalize(Binary(in))
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestNormalizeInline(t *testing.T) {
	out, err := Normalize(Inline("data:image/png;base64,AAAA"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MediaType)
	assert.Equal(t, 3, out.Size())
}
