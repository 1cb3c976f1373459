// Package cache stores rendered API responses keyed by a hash of the
// request, in process memory or in Redis.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Cache stores opaque values by key. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Config holds cache configuration.
type Config struct {
	Prefix          string
	TTL             time.Duration
	CleanupInterval time.Duration
	// CompressAbove is the value size in bytes from which values are stored
	// zstd-compressed. Zero disables compression.
	CompressAbove int
}

// DefaultConfig returns a cache config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:          "recall:",
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
		CompressAbove:   4096,
	}
}

func applyDefaults(config Config) Config {
	defaults := DefaultConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.TTL == 0 {
		config.TTL = defaults.TTL
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	return config
}

// Key derives a cache key from parts. Each part is length-prefixed before
// hashing, so ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...[]byte) string {
	h := blake3.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Stored values carry a one-byte header naming their encoding.
const (
	encodingRaw  byte = 0
	encodingZstd byte = 1
)

var errCorrupt = errors.New("corrupt cache value")

// zstd.Encoder and zstd.Decoder are safe for concurrent use via
// EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// encode prepends the encoding header, compressing when value is at least
// threshold bytes and compression actually shrinks it.
func encode(value []byte, threshold int) []byte {
	if threshold > 0 && len(value) >= threshold {
		compressed := zstdEncoder.EncodeAll(value, []byte{encodingZstd})
		if len(compressed) < len(value)+1 {
			return compressed
		}
	}
	out := make([]byte, 0, len(value)+1)
	out = append(out, encodingRaw)
	return append(out, value...)
}

func decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, errCorrupt
	}
	switch stored[0] {
	case encodingRaw:
		return append([]byte(nil), stored[1:]...), nil
	case encodingZstd:
		value, err := zstdDecoder.DecodeAll(stored[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %d", errCorrupt, stored[0])
	}
}
