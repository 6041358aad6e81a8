package adjacency

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec applied to packed target lists.
type Compression uint8

const (
	// CompressionNone stores the packed form as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 trades ratio for decode speed (hot lists).
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades decode speed for ratio (cold lists).
	CompressionZSTD Compression = 2
)

// Block format under a non-None codec:
// [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the data is stored uncompressed.
const blockHeaderSize = 8

// Packed forms below this size skip the compression attempt; the header
// still marks them as stored.
const compressMinBytes = 64

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// encodeBlock wraps packed in a header plus, when it pays for itself,
// the codec's compressed form. The result reuses dst's backing where it
// fits. Codec None returns packed unchanged.
func encodeBlock(dst, packed []byte, codec Compression) []byte {
	if codec == CompressionNone {
		return packed
	}
	if cap(dst) < blockHeaderSize {
		dst = make([]byte, blockHeaderSize, blockHeaderSize+len(packed))
	}

	// compressed, when non-nil, sits after the header slot in dst's
	// backing so the header can be filled in place.
	var compressed []byte
	if len(packed) >= compressMinBytes {
		switch codec {
		case CompressionLZ4:
			bound := lz4.CompressBlockBound(len(packed))
			if cap(dst) < blockHeaderSize+bound {
				dst = make([]byte, blockHeaderSize+bound)
			}
			dst = dst[:cap(dst)]
			n, err := lz4.CompressBlock(packed, dst[blockHeaderSize:], nil)
			if err == nil && n > 0 {
				compressed = dst[blockHeaderSize : blockHeaderSize+n]
			}
		case CompressionZSTD:
			enc := getZstdEncoder()
			dst = enc.EncodeAll(packed, dst[:blockHeaderSize])
			putZstdEncoder(enc)
			compressed = dst[blockHeaderSize:]
		}
	}

	if compressed != nil && len(compressed) <= len(packed)*9/10 {
		dst = dst[:blockHeaderSize+len(compressed)]
		binary.LittleEndian.PutUint32(dst[0:], uint32(len(packed)))
		binary.LittleEndian.PutUint32(dst[4:], uint32(len(compressed)))
		return dst
	}

	// Stored form: compression skipped or not worth it.
	if cap(dst) < blockHeaderSize+len(packed) {
		dst = make([]byte, blockHeaderSize+len(packed))
	}
	dst = dst[:blockHeaderSize+len(packed)]
	binary.LittleEndian.PutUint32(dst[0:], uint32(len(packed)))
	binary.LittleEndian.PutUint32(dst[4:], 0)
	copy(dst[blockHeaderSize:], packed)
	return dst
}

// decodeBlock extracts the packed form from block. Stored blocks come
// back as a view into block itself; compressed ones are inflated into
// scratch's backing. The second return is the scratch to keep for the
// next call. Blocks are produced by encodeBlock and trusted once
// sealed, so malformed input panics.
func decodeBlock(scratch, block []byte, codec Compression) ([]byte, []byte) {
	if codec == CompressionNone {
		return block, scratch
	}
	if len(block) < blockHeaderSize {
		panic("adjacency: corrupt block: short header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])

	if compressedSize == 0 {
		if uint32(len(block)) < blockHeaderSize+uncompressedSize {
			panic("adjacency: corrupt block: truncated stored data")
		}
		return block[blockHeaderSize : blockHeaderSize+uncompressedSize], scratch
	}
	if uint32(len(block)) < blockHeaderSize+compressedSize {
		panic("adjacency: corrupt block: truncated compressed data")
	}
	compressed := block[blockHeaderSize : blockHeaderSize+compressedSize]

	if cap(scratch) < int(uncompressedSize) {
		scratch = make([]byte, uncompressedSize)
	}
	scratch = scratch[:uncompressedSize]

	switch codec {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, scratch)
		if err != nil || uint32(n) != uncompressedSize {
			panic(fmt.Sprintf("adjacency: corrupt block: %v", err))
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(compressed, scratch[:0])
		putZstdDecoder(dec)
		if err != nil || uint32(len(out)) != uncompressedSize {
			panic(fmt.Sprintf("adjacency: corrupt block: %v", err))
		}
		scratch = out
	}
	return scratch, scratch
}
