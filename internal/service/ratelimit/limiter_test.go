package ratelimit

import "testing"

func TestAllowBurstThenDeny(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0.001) {
			t.Fatalf("burst token %d should be allowed", i)
		}
	}
	if l.Allow("k", 3, 0.001) {
		t.Fatalf("bucket should be empty after burst")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.001) {
		t.Fatalf("first token for a")
	}
	if l.Allow("a", 1, 0.001) {
		t.Fatalf("a should be exhausted")
	}
	if !l.Allow("b", 1, 0.001) {
		t.Fatalf("b has its own bucket")
	}
}
