package compress

import (
	"fmt"
	"testing"
)

func benchCodecs(b *testing.B) map[string]Codec {
	b.Helper()

	custom, err := NewCustomRegistry().Codec(ZstdCodecName)
	if err != nil {
		b.Fatal(err)
	}

	return map[string]Codec{
		"Gzip":   NewGzipCodec(),
		"Zlib":   NewZlibCodec(),
		"LZ4":    NewLZ4Codec(),
		"Custom": custom,
	}
}

// Typical chunk documents decompress to 10-60 KiB.
var benchSizes = []int{4 << 10, 16 << 10, 64 << 10}

func BenchmarkAllCodecs_Compress(b *testing.B) {
	for name, codec := range benchCodecs(b) {
		for _, size := range benchSizes {
			data := chunkLike(size)
			b.Run(fmt.Sprintf("%s/%dKB", name, size>>10), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ReportAllocs()

				for b.Loop() {
					_, _ = codec.Compress(data)
				}
			})
		}
	}
}

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	for name, codec := range benchCodecs(b) {
		for _, size := range benchSizes {
			compressed, err := codec.Compress(chunkLike(size))
			if err != nil {
				b.Fatal(err)
			}
			b.Run(fmt.Sprintf("%s/%dKB", name, size>>10), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ReportAllocs()

				for b.Loop() {
					_, _ = codec.Decompress(compressed)
				}
			})
		}
	}
}

func BenchmarkAllCodecs_CompressionRatio(b *testing.B) {
	data := chunkLike(64 << 10)
	for name, codec := range benchCodecs(b) {
		b.Run(name, func(b *testing.B) {
			var compressed []byte
			for b.Loop() {
				compressed, _ = codec.Compress(data)
			}
			b.ReportMetric(float64(len(data))/float64(len(compressed)), "ratio")
		})
	}
}

func BenchmarkZlibDecompress_Parallel(b *testing.B) {
	codec := NewZlibCodec()
	compressed, err := codec.Compress(chunkLike(32 << 10))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = codec.Decompress(compressed)
		}
	})
}
