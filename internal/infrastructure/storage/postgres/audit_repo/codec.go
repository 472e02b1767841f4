package audit_repo

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the diff size above which payloads are compressed.
const DefaultCompressThreshold = 10 * 1024

// codec stores large diffs zstd-compressed in changes_compressed.
type codec struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func newCodec(threshold int) (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: encoder, decoder: decoder, threshold: threshold}, nil
}

// encode returns exactly one of changes or compressed.
func (c *codec) encode(diff json.RawMessage) (changes json.RawMessage, compressed []byte, algo CompressionAlgo) {
	if len(diff) > c.threshold {
		return nil, c.encoder.EncodeAll(diff, nil), CompressionZstd
	}
	return diff, nil, CompressionNone
}

func (c *codec) decode(changes json.RawMessage, compressed []byte, algo CompressionAlgo) (json.RawMessage, error) {
	switch algo {
	case CompressionZstd:
		out, err := c.decoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
		return out, nil
	case CompressionNone, "":
		return changes, nil
	}
	return nil, fmt.Errorf("unknown compression algo %q", algo)
}
