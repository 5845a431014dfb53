package snapshot

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// CompressorInterface is the codec snapshots pass through on their way to
// and from disk. Payloads are gzip at rest per the snapshot store contract.
type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

type GzipCompression struct{}

func NewGzipCompressor() CompressorInterface {
	return &GzipCompression{}
}

func (g *GzipCompression) Compress(val []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(val); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GzipCompression) Decompress(val []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(val))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
