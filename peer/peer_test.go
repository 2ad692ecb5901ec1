package peer

import "testing"

const examplePeerID = "12D3KooWGzN4VooNE1iZxcnxzWq4EZWfoo3ftBqwXAmE9z3Y5YNr"

func TestExtractIDWithP2PComponent(t *testing.T) {
	addr, err := AddrFromString("/ip4/127.0.0.1/tcp/4001/p2p/" + examplePeerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, err := ExtractID(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := IDFromString(examplePeerID)
	if err != nil {
		t.Fatalf("unexpected error decoding want: %v", err)
	}
	if id != want {
		t.Fatalf("ExtractID() = %v, want %v", id, want)
	}
}

func TestExtractIDWithoutP2PComponent(t *testing.T) {
	addr, err := AddrFromString("/ip4/127.0.0.1/tcp/4001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = ExtractID(addr)
	if err != ErrMissingP2PComponent {
		t.Fatalf("expected ErrMissingP2PComponent, got %v", err)
	}
}

func TestAddrInfoFromAddr(t *testing.T) {
	addr, err := AddrFromString("/ip4/127.0.0.1/tcp/4001/p2p/" + examplePeerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := AddrInfoFromAddr(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := IDFromString(examplePeerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != want {
		t.Fatalf("AddrInfo.ID = %v, want %v", info.ID, want)
	}
}

func TestAddrFromStringInvalid(t *testing.T) {
	if _, err := AddrFromString("not-a-multiaddr"); err == nil {
		t.Fatal("expected error for invalid multiaddr")
	}
}
