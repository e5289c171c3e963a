package cidutil

import (
	"errors"
	"testing"
)

func TestDigest_StableAndVerifiable(t *testing.T) {
	a := DigestString([]byte("element bytes"))
	b := DigestString([]byte("element bytes"))
	if a == "" || a != b {
		t.Fatalf("digest not stable: %q vs %q", a, b)
	}
	if err := Verify([]byte("element bytes"), a); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify([]byte("other bytes"), a); !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("got %v want ErrDigestMismatch", err)
	}
	if err := Verify(nil, "not-a-cid"); err == nil {
		t.Fatalf("expected decode error")
	}
}
