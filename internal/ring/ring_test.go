package ring

import "testing"

func TestPushEvictsOldest(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	b.Push(4) // evicts 1

	got := b.Items()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items() = %v, want %v", got, want)
		}
	}
}

func TestLastReflectsMostRecentPush(t *testing.T) {
	b := New[string](2)
	if _, ok := b.Last(); ok {
		t.Fatal("expected empty buffer to report ok=false")
	}
	b.Push("a")
	b.Push("b")
	b.Push("c")
	got, ok := b.Last()
	if !ok || got != "c" {
		t.Fatalf("Last() = %q, %v, want c, true", got, ok)
	}
}

func TestLenTracksSizeUpToCapacity(t *testing.T) {
	b := New[int](2)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
	b.Push(1)
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}
	b.Push(2)
	b.Push(3)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (capped)", b.Len())
	}
}
