package alertengine

import (
	"testing"
	"time"
)

func TestPendingExpiresAfterDelay(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	s.RecordPending("r1:d1", 30*time.Second, now)

	if s.PendingExpired("r1:d1", now.Add(10*time.Second)) {
		t.Fatalf("expected pending trigger to not yet be expired")
	}
	if !s.PendingExpired("r1:d1", now.Add(30*time.Second)) {
		t.Fatalf("expected pending trigger to be expired at delay boundary")
	}
}

func TestRecordPendingDoesNotResetAnExistingWindow(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	s.RecordPending("r1:d1", 30*time.Second, now)
	s.RecordPending("r1:d1", 30*time.Second, now.Add(20*time.Second))

	if !s.PendingExpired("r1:d1", now.Add(30*time.Second)) {
		t.Fatalf("expected first window's expiry to still govern")
	}
}

func TestClearPendingRemovesEntry(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	s.RecordPending("r1:d1", 30*time.Second, now)
	s.ClearPending("r1:d1")
	if s.HasPending("r1:d1") {
		t.Fatalf("expected pending trigger to be cleared")
	}
}

func TestCorrelationWindow(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	s.TrackCorrelation("r1:d1", now)

	if !s.RecentlyCorrelated("r1:d1", now.Add(23*time.Hour)) {
		t.Fatalf("expected correlation to still be tracked within 24h")
	}
	if s.RecentlyCorrelated("r1:d1", now.Add(25*time.Hour)) {
		t.Fatalf("expected correlation to expire after 24h")
	}
}

func TestPruneCorrelationsEvictsStaleEntries(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	s.TrackCorrelation("r1:d1", now)
	s.PruneCorrelations(now.Add(25 * time.Hour))
	if s.RecentlyCorrelated("r1:d1", now.Add(25*time.Hour)) {
		t.Fatalf("expected pruned correlation entry to be gone")
	}
}
