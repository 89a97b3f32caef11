package hashx

import "testing"

// Reference digests from the Keccak test vectors used by Ethereum clients.
func TestKeccak256Hex_KnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tt := range tests {
		if got := Keccak256Hex([]byte(tt.in)); got != tt.want {
			t.Errorf("Keccak256Hex(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKeccak256_Deterministic(t *testing.T) {
	data := []byte(`{"a":1,"b":"two"}`)
	if h1, h2 := Keccak256Hex(data), Keccak256Hex(data); h1 != h2 {
		t.Errorf("hash not deterministic: %s vs %s", h1, h2)
	}
}

func TestKeccak256_Length(t *testing.T) {
	if got := len(Keccak256([]byte("x"))); got != 32 {
		t.Errorf("digest length = %d, want 32", got)
	}
}
