package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/pickleclub/internal/api/authz"
	"github.com/codr1/pickleclub/internal/metrics"
)

func TestWithRequestIDAssignsAndPropagates(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected generated request id in context and header, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	const upstream = "0b9e8c1e-3f0a-4c4e-9d59-3e0d5a0f4d11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", upstream)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != upstream {
		t.Fatalf("expected upstream request id %s, got %s", upstream, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid\nInjected: yes")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if strings.Contains(seen, "Injected") {
		t.Fatalf("malformed upstream request id was trusted: %q", seen)
	}
}

func TestWithAuth(t *testing.T) {
	var user *authz.AuthUser
	handler := WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = authz.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(authz.MemberIDHeader, "12")
	req.Header.Set(authz.StaffHeader, "true")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if user == nil || user.ID != 12 || !user.IsStaff {
		t.Fatalf("expected staff user 12, got %+v", user)
	}

	user = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if user != nil {
		t.Fatalf("expected anonymous request, got %+v", user)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(authz.MemberIDHeader, "twelve")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("malformed identity: expected 401, got %d", rec.Code)
	}
}

func TestWithStaffAuth(t *testing.T) {
	handler := WithStaffAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name string
		user *authz.AuthUser
		want int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "member", user: &authz.AuthUser{ID: 1}, want: http.StatusForbidden},
		{name: "staff", user: &authz.AuthUser{ID: 2, IsStaff: true}, want: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.user != nil {
				req = req.WithContext(authz.ContextWithUser(req.Context(), tc.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestWithRecovery(t *testing.T) {
	handler := WithRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestChainMiddlewareWithMetrics(t *testing.T) {
	m := metrics.New()
	handler := ChainMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
		WithMetrics(m),
		WithLogging,
		WithRequestID,
	)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected 200 with request id, got %d", rec.Code)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), "http_request_duration_seconds") {
			found = len(f.GetMetric()) == 1
		}
	}
	if !found {
		t.Fatalf("expected one request duration series")
	}
}
