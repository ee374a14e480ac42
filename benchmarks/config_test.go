package benchmarks

import (
	"testing"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit"
)

// BenchmarkLoad_Layered measures merging an override onto a base document.
func BenchmarkLoad_Layered(b *testing.B) {
	base := cfgDocument(100)
	override := cfgDocument(10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg := cfgkit.New()
		_ = cfg.LoadString(base)
		_ = cfg.LoadString(override)
	}
}

// BenchmarkGet_Hit measures a nested string lookup.
func BenchmarkGet_Hit(b *testing.B) {
	cfg := mustLoad(b, cfgDocument(100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cfg.Get("section50.name")
	}
}

// BenchmarkGet_Miss measures a lookup that does not resolve.
func BenchmarkGet_Miss(b *testing.B) {
	cfg := mustLoad(b, cfgDocument(100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cfg.Get("section50.missing")
	}
}

// BenchmarkInt measures a typed lookup.
func BenchmarkInt(b *testing.B) {
	cfg := mustLoad(b, cfgDocument(100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cfg.Int("section99.port")
	}
}

// BenchmarkMarshalJSON measures encoding the merged tree.
func BenchmarkMarshalJSON(b *testing.B) {
	cfg := mustLoad(b, cfgDocument(100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cfg.MarshalJSON()
	}
}
