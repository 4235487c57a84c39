package similarity

import "testing"

func TestFingerprintStable(t *testing.T) {
	text := "Review the following code and list potential bugs"
	if Fingerprint(text) != Fingerprint(text) {
		t.Fatal("fingerprint not deterministic for identical input")
	}
}

func TestHammingDistance(t *testing.T) {
	if d := HammingDistance(0, 0); d != 0 {
		t.Errorf("expected distance 0, got %d", d)
	}
	if d := HammingDistance(0b1011, 0b0010); d != 2 {
		t.Errorf("expected distance 2, got %d", d)
	}
	if d := HammingDistance(0, ^uint64(0)); d != 64 {
		t.Errorf("expected distance 64, got %d", d)
	}
}

func TestIsNearDuplicate(t *testing.T) {
	base := "Review the following code for bugs and style issues, then summarize findings"
	tweaked := "Review the following code for bugs and style issues, then summarize the findings"
	unrelated := "Write a haiku about distributed systems and lost packets in spring"

	if !IsNearDuplicate(base, base) {
		t.Error("identical texts should be near-duplicates")
	}
	if IsNearDuplicate(base, unrelated) {
		t.Error("unrelated texts should not be near-duplicates")
	}

	// a light edit lands much closer than an unrelated text
	editDist := HammingDistance(Fingerprint(base), Fingerprint(tweaked))
	unrelatedDist := HammingDistance(Fingerprint(base), Fingerprint(unrelated))
	if editDist >= unrelatedDist {
		t.Errorf("expected edit distance (%d) below unrelated distance (%d)", editDist, unrelatedDist)
	}
}

func TestTokenize(t *testing.T) {
	words := tokenize("Hello, World! {{var_name}} 42")
	expected := []string{"hello", "world", "var_name", "42"}
	if len(words) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(words), words)
	}
	for i, w := range expected {
		if words[i] != w {
			t.Errorf("token %d: expected %q, got %q", i, w, words[i])
		}
	}
}
