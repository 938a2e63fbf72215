// Package imagedata normalizes picked images into a single binary form.
//
// A picker hands back either a data URL ("data:image/png;base64,....") or
// raw bytes. Both workflows that accept images run them through Normalize so
// the upload step only ever sees a *Blob.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// chunkSize is the number of base64 source characters decoded per block.
// It is a multiple of 4 so every block except the last decodes on its own.
const chunkSize = 1024

// ErrMalformedInline is returned when a data URL cannot be split into a
// header and payload, carries no media type, or holds invalid base64.
var ErrMalformedInline = errors.New("malformed inline image data")

var mediaTypePattern = regexp.MustCompile(`([\w.+-]+/[\w.+-]+)[;| ]`)

// Blob is an image held in memory together with its media type.
type Blob struct {
	Data      []byte
	MediaType string
}

func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

// Payload is a picked image in either of its two arrival forms. Exactly one
// of Inline and Binary is set.
type Payload struct {
	Inline string
	Binary *Blob
}

func Inline(data string) Payload {
	return Payload{Inline: data}
}

func Binary(b *Blob) Payload {
	return Payload{Binary: b}
}

// Normalize returns the binary form of p. Binary payloads are returned as is.
func Normalize(p Payload) (*Blob, error) {
	if p.Binary != nil {
		return p.Binary, nil
	}
	return DecodeInlineImage(p.Inline)
}

// DecodeInlineImage splits a data URL at its first comma, extracts the media
// type declared in the header and decodes the base64 payload in fixed-size
// chunks.
func DecodeInlineImage(data string) (*Blob, error) {
	header, payload, ok := strings.Cut(data, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrMalformedInline)
	}

	m := mediaTypePattern.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: missing media type", ErrMalformedInline)
	}

	blocks, err := decodeChunks(payload)
	if err != nil {
		return nil, err
	}

	return &Blob{Data: bytes.Join(blocks, nil), MediaType: m[1]}, nil
}

func decodeChunks(payload string) ([][]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedInline)
	}

	enc := base64.StdEncoding
	if len(payload)%4 != 0 && !strings.HasSuffix(payload, "=") {
		enc = base64.RawStdEncoding
	}

	blocks := make([][]byte, 0, (len(payload)+chunkSize-1)/chunkSize)
	for begin := 0; begin < len(payload); begin += chunkSize {
		end := min(begin+chunkSize, len(payload))
		block, err := enc.DecodeString(payload[begin:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInline, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
