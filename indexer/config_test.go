package indexer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBootnodeFileSkipsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootnodes.yaml")

	content := "Bootnodes:\n" +
		"  - \"/ip4/127.0.0.1/tcp/4001/p2p/12D3KooWGzN4VooNE1iZxcnxzWq4EZWfoo3ftBqwXAmE9z3Y5YNr\"\n" +
		"  - \"not a multiaddr\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addrs, err := LoadBootnodeFile(path, noopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("got %d addrs, want 1", len(addrs))
	}
}

func TestLoadBootnodeFileMissing(t *testing.T) {
	if _, err := LoadBootnodeFile(filepath.Join(t.TempDir(), "missing.yaml"), noopLogger()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

