package hill

import "testing"

func TestKeyCanonical(t *testing.T) {
	if Key("b", "a") != Key("a", "b") {
		t.Fatal("Key should not depend on argument order")
	}
	k := Key("zeta", "alpha")
	if k.A != "alpha" || k.B != "zeta" {
		t.Errorf("Key = %+v, want A=alpha B=zeta", k)
	}
	if !k.Has("zeta") || k.Has("beta") {
		t.Error("Has reports wrong membership")
	}
}

func TestAlignmentMemory(t *testing.T) {
	m := NewAlignmentMemory()
	m.Set("a", "b", 320)
	m.Set("c", "a", 400)
	m.Set("b", "c", 500)

	if pos, ok := m.Get("b", "a"); !ok || pos != 320 {
		t.Errorf("Get(b, a) = (%v, %v), want 320", pos, ok)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}

	entries := m.Entries()
	want := []PairKey{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	for i, e := range entries {
		if e.Pair != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e.Pair, want[i])
		}
	}

	if !m.Remove("b", "a") {
		t.Error("Remove should report an existing entry")
	}
	if m.Remove("a", "b") {
		t.Error("Remove should report a missing entry")
	}

	if n := m.RemoveMarker("c"); n != 2 {
		t.Errorf("RemoveMarker = %d, want 2", n)
	}
	if m.Len() != 0 {
		t.Errorf("Len after RemoveMarker = %d, want 0", m.Len())
	}

	m.Set("x", "y", 1)
	m.Clear()
	if _, ok := m.Get("x", "y"); ok {
		t.Error("Clear should forget all entries")
	}
}
