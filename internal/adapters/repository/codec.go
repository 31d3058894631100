package repository

import (
	"fmt"

	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Raw export blobs start with a one-byte tag naming their encoding.
const (
	tagPlain byte = 0
	tagLZ4   byte = 1
)

// payload is the msgpack-encoded part of a stored profile.
type payload struct {
	Settings scoring.Config   `msgpack:"settings"`
	Entities []scoring.Entity `msgpack:"entities"`
}

func encodePayload(p profile.Profile) ([]byte, error) {
	b, err := msgpack.Marshal(payload{Settings: p.Settings, Entities: p.Entities})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func decodePayload(b []byte, p *profile.Profile) error {
	var pl payload
	if err := msgpack.Unmarshal(b, &pl); err != nil {
		return fmt.Errorf("%w: payload: %w", ErrCorrupt, err)
	}
	p.Settings = pl.Settings
	p.Entities = pl.Entities
	return nil
}

// compressRaw LZ4-compresses an export. Text that does not shrink is kept plain.
func compressRaw(raw string) []byte {
	src := []byte(raw)
	dst := make([]byte, 1+lz4.CompressBlockBound(len(src)))

	n, err := lz4.CompressBlock(src, dst[1:], nil)
	if err != nil || n == 0 || n >= len(src) {
		return append([]byte{tagPlain}, src...)
	}
	dst[0] = tagLZ4
	return dst[:1+n]
}

// decompressRaw reverses compressRaw. size is the original length in bytes.
func decompressRaw(blob []byte, size int) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("%w: empty export blob", ErrCorrupt)
	}
	switch blob[0] {
	case tagPlain:
		return string(blob[1:]), nil
	case tagLZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(blob[1:], dst)
		if err != nil {
			return "", fmt.Errorf("%w: export: %w", ErrCorrupt, err)
		}
		if n != size {
			return "", fmt.Errorf("%w: export length %d, want %d", ErrCorrupt, n, size)
		}
		return string(dst), nil
	default:
		return "", fmt.Errorf("%w: unknown export encoding %d", ErrCorrupt, blob[0])
	}
}
