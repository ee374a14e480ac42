package benchmarks

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit"
	"github.com/randalmurphal/cfgkit/pkg/cfgkit/snapshot"
)

// cfgDocument builds a line-form document with n sections of four keys.
func cfgDocument(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "section%d.name: 'service %d'\n", i, i)
		fmt.Fprintf(&sb, "section%d.port: %d\n", i, 8000+i)
		fmt.Fprintf(&sb, "section%d.enabled: true\n", i)
		fmt.Fprintf(&sb, "section%d.tags: [a, b, c]\n", i)
	}
	return sb.String()
}

// jsonDocument is the JSON rendering of cfgDocument(n).
func jsonDocument(n int) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `"section%d":{"name":"service %d","port":%d,"enabled":true,"tags":["a","b","c"]}`, i, i, 8000+i)
	}
	sb.WriteByte('}')
	return sb.String()
}

// yamlDocument is the YAML rendering of cfgDocument(n).
func yamlDocument(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "section%d:\n  name: service %d\n  port: %d\n  enabled: true\n  tags: [a, b, c]\n", i, i, 8000+i)
	}
	return sb.String()
}

// tomlDocument is the TOML rendering of cfgDocument(n).
func tomlDocument(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "[section%d]\nname = \"service %d\"\nport = %d\nenabled = true\ntags = [\"a\", \"b\", \"c\"]\n\n", i, i, 8000+i)
	}
	return sb.String()
}

func mustLoad(b *testing.B, src string) *cfgkit.Config {
	b.Helper()
	cfg := cfgkit.New()
	if err := cfg.LoadString(src); err != nil {
		b.Fatal(err)
	}
	return cfg
}

func createSQLiteStore(b *testing.B) (*snapshot.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := snapshot.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
