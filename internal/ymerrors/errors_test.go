package ymerrors

import (
	"errors"
	"testing"
)

func TestSnmpErrorIsMatchesByType(t *testing.T) {
	err := &SnmpError{Code: "noSuchName", Op: "get"}
	if !errors.Is(err, &SnmpError{}) {
		t.Fatal("expected errors.Is to match any *SnmpError")
	}
}

func TestNotFoundWrapsErrNotFound(t *testing.T) {
	err := NotFound("device", "dev-123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is(err, ErrNotFound) to hold")
	}
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	if !errors.Is(err, ErrInternal) {
		t.Fatal("expected errors.Is(err, ErrInternal) to hold")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is(err, cause) to hold")
	}
}

func TestConflictWrapsErrConflict(t *testing.T) {
	err := Conflict("rule %s has active alerts", "rule-1")
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected errors.Is(err, ErrConflict) to hold")
	}
}
