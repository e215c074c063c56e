package plan

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Transformer is a pure, reversible byte-to-byte transformation.
type Transformer interface {
	Name() string
	Forward(data []byte) ([]byte, error)
	Reverse(data []byte) ([]byte, error)
}

// GzipTransformer compresses on the way in and decompresses on the way out.
type GzipTransformer struct {
	// Level is a gzip level. Zero selects gzip.DefaultCompression.
	Level int
}

// Name implements Transformer.
func (g GzipTransformer) Name() string { return "gzip" }

// Forward implements Transformer.
func (g GzipTransformer) Forward(data []byte) ([]byte, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reverse implements Transformer.
func (g GzipTransformer) Reverse(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ByteReverser reverses byte order. It is its own inverse.
type ByteReverser struct{}

// Name implements Transformer.
func (ByteReverser) Name() string { return "reverse" }

// Forward implements Transformer.
func (ByteReverser) Forward(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out, nil
}

// Reverse implements Transformer.
func (r ByteReverser) Reverse(data []byte) ([]byte, error) {
	return r.Forward(data)
}

// LookupTransformer returns the built-in transform registered under name.
func LookupTransformer(name string) (Transformer, bool) {
	switch name {
	case "gzip":
		return GzipTransformer{}, true
	case "reverse":
		return ByteReverser{}, true
	}
	return nil, false
}

const inverseMark = "~"

func stageName(a *TransformAction) string {
	if a.Inverse {
		return inverseMark + a.Transformer.Name()
	}
	return a.Transformer.Name()
}

func parseStage(s string) (name string, inverse bool) {
	if strings.HasPrefix(s, inverseMark) {
		return s[len(inverseMark):], true
	}
	return s, false
}
