package wire

import (
	"bytes"
	"testing"

	delpeer "github.com/polkastorage/delia/peer"
)

const testPeerID = "12D3KooWGzN4VooNE1iZxcnxzWq4EZWfoo3ftBqwXAmE9z3Y5YNr"

func mustPeerID(t *testing.T) delpeer.ID {
	t.Helper()
	id, err := delpeer.IDFromString(testPeerID)
	if err != nil {
		t.Fatalf("unexpected error decoding test peer id: %v", err)
	}
	return id
}

func mustAddrs(t *testing.T, raw ...string) []delpeer.Multiaddr {
	t.Helper()
	out := make([]delpeer.Multiaddr, len(raw))
	for i, s := range raw {
		addr, err := delpeer.AddrFromString(s)
		if err != nil {
			t.Fatalf("unexpected error decoding test multiaddr %q: %v", s, err)
		}
		out[i] = addr
	}
	return out
}

func TestResponseRoundTripFound(t *testing.T) {
	peer := mustPeerID(t)
	maddrs := mustAddrs(t, "/ip4/10.0.0.1/tcp/4001", "/ip4/10.0.0.2/udp/4001/quic")

	want := NewFoundResponse(peer, maddrs)

	data, err := want.MarshalCBOR()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Response
	if err := got.UnmarshalCBOR(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Found == nil || got.NotFound != nil {
		t.Fatalf("got = %+v, want Found set and NotFound nil", got)
	}
	if got.Found.Peer != peer {
		t.Errorf("Peer = %v, want %v", got.Found.Peer, peer)
	}
	if len(got.Found.Maddrs) != len(maddrs) {
		t.Fatalf("len(Maddrs) = %d, want %d", len(got.Found.Maddrs), len(maddrs))
	}
	for i, addr := range got.Found.Maddrs {
		if addr.String() != maddrs[i].String() {
			t.Errorf("Maddrs[%d] = %s, want %s", i, addr.String(), maddrs[i].String())
		}
	}
}

func TestResponseRoundTripNotFound(t *testing.T) {
	peer := mustPeerID(t)
	want := NewNotFoundResponse(peer)

	data, err := want.MarshalCBOR()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Response
	if err := got.UnmarshalCBOR(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.NotFound == nil || got.Found != nil {
		t.Fatalf("got = %+v, want NotFound set and Found nil", got)
	}
	if got.NotFound.Peer != peer {
		t.Errorf("Peer = %v, want %v", got.NotFound.Peer, peer)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	maddrs := mustAddrs(t, "/ip4/127.0.0.1/tcp/4001", "/dns4/example.com/tcp/443/wss")

	data, err := EncodeRecord(maddrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != len(maddrs) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(maddrs))
	}
	for i, addr := range got {
		if addr.String() != maddrs[i].String() {
			t.Errorf("got[%d] = %s, want %s", i, addr.String(), maddrs[i].String())
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	peer := mustPeerID(t)
	var buf bytes.Buffer

	w := NewWriter(&buf)
	if err := WriteRequest(w, Request{Peer: peer}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewReader(&buf)
	got, err := ReadRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Peer != peer {
		t.Errorf("Peer = %v, want %v", got.Peer, peer)
	}
}

func TestResponseMustHaveExactlyOneVariant(t *testing.T) {
	var empty Response
	if _, err := empty.MarshalCBOR(); err == nil {
		t.Fatal("expected error marshaling a Response with neither variant set")
	}
}
