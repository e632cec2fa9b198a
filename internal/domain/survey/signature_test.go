package survey

import "testing"

func TestCompressSignature(t *testing.T) {
	markup := "<svg>\n  <path   d=\"M 0 0 L 10 10\" />\n</svg>"
	got := CompressSignature(markup)
	want := `<svg><path d="M 0 0 L 10 10"/></svg>`
	if got != want {
		t.Fatalf("CompressSignature() = %q, want %q", got, want)
	}
}

func TestCompressSignatureIdempotent(t *testing.T) {
	markup := "<svg> <g>  <path d=\"M1 2\"/> </g> </svg>"
	once := CompressSignature(markup)
	twice := CompressSignature(once)
	if once != twice {
		t.Fatalf("CompressSignature() not idempotent: %q vs %q", once, twice)
	}
}

func TestCompressSignatureEmpty(t *testing.T) {
	if got := CompressSignature(""); got != "" {
		t.Fatalf("CompressSignature(\"\") = %q", got)
	}
}
