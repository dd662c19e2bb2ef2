package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestHandleReady_ReflectsRegisteredChecks(t *testing.T) {
	s := NewServer(0, "test")

	healthy := true
	s.RegisterCheck("catalog", func(ctx context.Context) (bool, string) {
		if !healthy {
			return false, "asset catalog empty"
		}
		return true, ""
	})

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != 200 {
		t.Errorf("ready with passing check = %d, want 200", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != 503 {
		t.Errorf("ready with failing check = %d, want 503", rec.Code)
	}
}

func TestHandleHealth_ReportsPerCheckStatus(t *testing.T) {
	s := NewServer(0, "1.2.3")
	s.RegisterCheck("catalog", func(ctx context.Context) (bool, string) {
		return true, ""
	})
	s.RegisterCheck("bridge", func(ctx context.Context) (bool, string) {
		return false, "bridge session down"
	})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Fatalf("status = %d, want 503 when any check fails", rec.Code)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if !status.Checks["catalog"].Healthy {
		t.Error("catalog check should be healthy")
	}
	if status.Checks["bridge"].Healthy {
		t.Error("bridge check should be unhealthy")
	}
	if status.Checks["bridge"].Message != "bridge session down" {
		t.Errorf("bridge message = %q", status.Checks["bridge"].Message)
	}
	if status.Version != "1.2.3" {
		t.Errorf("version = %q", status.Version)
	}
}

func TestHandleLive_AlwaysOK(t *testing.T) {
	s := NewServer(0, "test")
	rec := httptest.NewRecorder()
	s.handleLive(rec, httptest.NewRequest("GET", "/live", nil))
	if rec.Code != 200 {
		t.Errorf("live = %d, want 200", rec.Code)
	}
}
