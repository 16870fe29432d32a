// Package serialization encodes flow snapshots for the snapshot stores:
// msgpack documents, optionally compressed.
package serialization

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// CompressionType represents compression algorithms
type CompressionType string

const (
	CompressionNone CompressionType = "none"
	CompressionGzip CompressionType = "gzip"
	CompressionZstd CompressionType = "zstd"
)

// ParseCompression maps a config value to a CompressionType
func ParseCompression(s string) (CompressionType, error) {
	switch c := CompressionType(s); c {
	case CompressionNone, CompressionGzip, CompressionZstd:
		return c, nil
	case "":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// Serializer turns values into msgpack bytes and back. It is safe for
// concurrent use.
type Serializer struct {
	compression CompressionType
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
}

// NewSerializer creates a serializer for the given compression
func NewSerializer(compression CompressionType) (*Serializer, error) {
	s := &Serializer{compression: compression}

	if compression == CompressionZstd {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		s.encoder, s.decoder = enc, dec
	}

	return s, nil
}

// Compression returns the configured compression
func (s *Serializer) Compression() CompressionType {
	return s.compression
}

// Serialize encodes then compresses v
func (s *Serializer) Serialize(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack encoding failed: %w", err)
	}

	data, err = s.compress(data)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	return data, nil
}

// Deserialize decompresses then decodes data into v
func (s *Serializer) Deserialize(data []byte, v interface{}) error {
	data, err := s.decompress(data)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("msgpack decoding failed: %w", err)
	}
	return nil
}

// Close releases the zstd workers
func (s *Serializer) Close() {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
}

func (s *Serializer) compress(data []byte) ([]byte, error) {
	switch s.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		return s.encoder.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (s *Serializer) decompress(data []byte) ([]byte, error) {
	switch s.compression {
	case CompressionGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case CompressionZstd:
		return s.decoder.DecodeAll(data, nil)
	default:
		return data, nil
	}
}
