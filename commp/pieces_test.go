package commp

import "testing"

func TestPaddedPieceSize(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{127, 128},
		{128, 256},
		{254, 256},
		{1024, 2048},
		{3000, 4096},
		{4096, 8192},
	}

	for _, tt := range tests {
		if got := PaddedPieceSize(tt.n); got != tt.want {
			t.Errorf("PaddedPieceSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPaddedPieceSizeMinimumAndInvariants(t *testing.T) {
	for n := uint64(1); n < 2000; n++ {
		padded := PaddedPieceSize(n)

		if padded < 128 {
			t.Fatalf("PaddedPieceSize(%d) = %d, below minimum 128", n, padded)
		}
		if padded&(padded-1) != 0 {
			t.Fatalf("PaddedPieceSize(%d) = %d is not a power of two", n, padded)
		}
		ceilDiv127 := (n + 126) / 127
		if padded < n+ceilDiv127 {
			t.Fatalf("PaddedPieceSize(%d) = %d violates padded >= n + ceil(n/127)", n, padded)
		}
	}
}

func TestUnpaddedPieceSize(t *testing.T) {
	if got := UnpaddedPieceSize(128); got != 127 {
		t.Errorf("UnpaddedPieceSize(128) = %d, want 127", got)
	}
	if got := UnpaddedPieceSize(256); got != 254 {
		t.Errorf("UnpaddedPieceSize(256) = %d, want 254", got)
	}
}
