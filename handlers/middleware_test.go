package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
	"steelops/testhelpers"
)

func TestRequireCapability(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	called := false
	next := func(e *core.RequestEvent) error {
		called = true
		return e.JSON(http.StatusOK, map[string]string{"ok": "yes"})
	}

	tests := []struct {
		name         string
		role         string
		cap          services.Capability
		expectStatus int
		expectCalled bool
	}{
		{"admin allowed", "admin", services.CapProjectsWrite, http.StatusOK, true},
		{"office allowed for quotes", "office", services.CapQuotesWrite, http.StatusOK, true},
		{"workshop blocked from quotes", "workshop", services.CapQuotesWrite, http.StatusForbidden, false},
		{"readonly blocked", "readonly", services.CapProjectsWrite, http.StatusForbidden, false},
		{"missing role header blocked", "", services.CapProjectsWrite, http.StatusForbidden, false},
		{"unknown role blocked", "director", services.CapProjectsWrite, http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			handler := RequireCapability(tt.cap, next)

			req := httptest.NewRequest(http.MethodPost, "/projects", nil)
			if tt.role != "" {
				req.Header.Set("X-App-Role", tt.role)
			}
			rec := httptest.NewRecorder()

			if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.expectStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectStatus)
			}
			if called != tt.expectCalled {
				t.Errorf("next called = %v, want %v", called, tt.expectCalled)
			}
			if tt.expectStatus == http.StatusForbidden {
				body := decodeJSON(t, rec)
				if body["error"] != ErrKindForbidden {
					t.Errorf("error kind = %v, want %s", body["error"], ErrKindForbidden)
				}
			}
		})
	}
}
