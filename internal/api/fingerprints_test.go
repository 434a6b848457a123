package api

import (
	"context"
	"testing"
	"time"
)

// TestFingerprintGenerationReportsMissingBinary exercises the polling
// wrapper around C6's Generator.Run when fpcalc isn't installed in the
// test environment — the run should reach a terminal error state rather
// than hang, and the session stays queryable afterward.
func TestFingerprintGenerationReportsMissingBinary(t *testing.T) {
	a := newTestAPI(t)
	id, err := a.StartFingerprintGeneration(context.Background())
	if err != nil {
		t.Fatalf("StartFingerprintGeneration: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := a.FingerprintStatusOf(id)
		if !ok {
			t.Fatal("expected session to be trackable")
		}
		if status.Result != nil || status.Err != "" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("fingerprint session did not reach a terminal state in time")
}

func TestFingerprintStatusUnknownSession(t *testing.T) {
	a := newTestAPI(t)
	if _, ok := a.FingerprintStatusOf("does-not-exist"); ok {
		t.Error("expected an unknown session id to report not-found")
	}
}
