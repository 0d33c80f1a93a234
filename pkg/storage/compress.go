package storage

import (
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names how an archived field is compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ParseCompression validates a compression name from configuration.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return c, nil
	case "":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, s)
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns data compressed with c, falling back to
// CompressionNone when compression does not shrink it.
func compress(c Compression, data []byte) ([]byte, Compression, error) {
	switch c {
	case CompressionZstd:
		out := zstdEncoder.EncodeAll(data, nil)
		if len(out) < len(data) {
			return out, CompressionZstd, nil
		}
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, "", fmt.Errorf("lz4 compress: %w", err)
		}
		// 0 means incompressible
		if n > 0 && n < len(data) {
			return dst[:n], CompressionLZ4, nil
		}
	case CompressionNone:
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownCodec, c)
	}
	return data, CompressionNone, nil
}

// decompress restores a field of size bytes. size comes from the
// manifest, which carries no checksum, so it is bounded by the envelope's
// own limit before anything is allocated.
func decompress(c Compression, data []byte, size int) ([]byte, error) {
	if size < 0 || uint64(size) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: field size %d out of range", ErrCorruption, size)
	}
	var (
		out []byte
		err error
	)
	switch c {
	case CompressionNone:
		out = data
	case CompressionZstd:
		out, err = zstdDecoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorruption, err)
		}
	case CompressionLZ4:
		out = make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4 decompress: %v", ErrCorruption, err)
		}
		out = out[:n]
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, c)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", ErrCorruption, len(out), size)
	}
	return out, nil
}
