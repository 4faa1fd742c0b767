package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/authz"
	"github.com/codr1/pickleclub/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Filename = filepath.Join(t.TempDir(), "db", "club.db")
	cfg.Features.EnableMetrics = true
	cfg.Wallet.RequestsPerMinute = 60
	cfg.Wallet.Burst = 2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)

	ts := httptest.NewServer(newServer(a).Handler)
	t.Cleanup(ts.Close)
	return ts
}

type caller struct {
	t       *testing.T
	baseURL string
	id      int64
	staff   bool
}

func (c caller) do(method, path, body string) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if c.id != 0 {
		req.Header.Set(authz.MemberIDHeader, fmt.Sprint(c.id))
	}
	if c.staff {
		req.Header.Set(authz.StaffHeader, "true")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func (c caller) must(method, path, body string, want int, dst any) {
	c.t.Helper()
	code, data := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, code, data)
	}
	if dst != nil {
		if err := json.Unmarshal(data, dst); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
}

func TestServerBookingFlow(t *testing.T) {
	ts := newTestServer(t)
	staff := caller{t: t, baseURL: ts.URL, id: 1, staff: true}

	var member struct {
		ID int64 `json:"id"`
	}
	staff.must(http.MethodPost, "/api/v1/members", `{"full_name":"Jo Park","email":"jo@example.com","membership_tier":"Silver"}`, http.StatusCreated, &member)

	var court struct {
		ID int64 `json:"id"`
	}
	staff.must(http.MethodPost, "/api/v1/courts", `{"name":"Court 1","court_type":"Outdoor","price_per_hour":"40"}`, http.StatusCreated, &court)

	jo := caller{t: t, baseURL: ts.URL, id: member.ID}
	jo.must(http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"100"}`, http.StatusCreated, nil)

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	body := fmt.Sprintf(`{"court_id":%d,"date":%q,"start_time":"10:00","end_time":"11:00"}`, court.ID, date)
	jo.must(http.MethodPost, "/api/v1/bookings", body, http.StatusCreated, nil)
	jo.must(http.MethodPost, "/api/v1/bookings", body, http.StatusConflict, nil)

	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	jo.must(http.MethodGet, "/api/v1/wallet/balance", "", http.StatusOK, &balance)
	if balance.Balance.StringFixed(2) != "60.00" {
		t.Fatalf("expected balance 60.00 after booking, got %s", balance.Balance.StringFixed(2))
	}

	var slots struct {
		Slots []struct {
			StartTime string `json:"start_time"`
			Available bool   `json:"is_available"`
		} `json:"slots"`
	}
	jo.must(http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots?date=%s", court.ID, date), "", http.StatusOK, &slots)
	for _, s := range slots.Slots {
		if s.StartTime == "10:00" && s.Available {
			t.Fatalf("booked slot reported available")
		}
	}
}

func TestServerAmbientRoutes(t *testing.T) {
	ts := newTestServer(t)
	anon := caller{t: t, baseURL: ts.URL}

	anon.must(http.MethodGet, "/health", "", http.StatusOK, nil)
	anon.must(http.MethodGet, "/api/v1/wallet/balance", "", http.StatusUnauthorized, nil)

	code, data := anon.do(http.MethodGet, "/metrics", "")
	if code != http.StatusOK || !strings.Contains(string(data), "http_request_duration_seconds") {
		t.Fatalf("expected request metrics, got %d", code)
	}
}

func TestServerThrottlesWalletWrites(t *testing.T) {
	ts := newTestServer(t)
	staff := caller{t: t, baseURL: ts.URL, id: 1, staff: true}
	var member struct {
		ID int64 `json:"id"`
	}
	staff.must(http.MethodPost, "/api/v1/members", `{"full_name":"Ari Lee","email":"ari@example.com"}`, http.StatusCreated, &member)

	ari := caller{t: t, baseURL: ts.URL, id: member.ID}
	ari.must(http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"5"}`, http.StatusCreated, nil)
	ari.must(http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"5"}`, http.StatusCreated, nil)
	ari.must(http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"5"}`, http.StatusTooManyRequests, nil)

	// Reads are not throttled.
	ari.must(http.MethodGet, "/api/v1/wallet/balance", "", http.StatusOK, nil)
}
