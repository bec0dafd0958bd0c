package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var seen string
	h := RequestID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"propagated", "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			req := httptest.NewRequest(http.MethodPost, "/aram.v1.AramStats/GetOverview", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if tt.header != "" && got != tt.header {
				t.Errorf("request id: got %q, want %q", got, tt.header)
			}
			if tt.header == "" {
				if _, err := uuid.Parse(got); err != nil {
					t.Errorf("generated id %q is not a uuid: %v", got, err)
				}
			}
			if seen != got {
				t.Errorf("context id %q != header id %q", seen, got)
			}

			logs := buf.String()
			if !strings.Contains(logs, `"request_id":"`+got+`"`) || !strings.Contains(logs, "inside handler") {
				t.Errorf("handler log missing request id:\n%s", logs)
			}
			if !strings.Contains(logs, `"status":418`) {
				t.Errorf("completion log missing status:\n%s", logs)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("got %q, want empty", id)
	}
}
