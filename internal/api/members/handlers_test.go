package members

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/codr1/pickleclub/internal/db"
	"github.com/codr1/pickleclub/internal/members"
	"github.com/codr1/pickleclub/internal/testutil"
)

func newTestMux(t *testing.T) (*http.ServeMux, *db.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	InitHandlers(members.NewService(database, members.Options{}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/members", HandleList)
	mux.HandleFunc("POST /api/v1/members", HandleCreate)
	mux.HandleFunc("GET /api/v1/members/me", HandleMe)
	mux.HandleFunc("GET /api/v1/members/{id}", HandleGet)
	mux.HandleFunc("PATCH /api/v1/members/{id}/tier", HandleSetTier)
	mux.HandleFunc("PATCH /api/v1/members/{id}/active", HandleSetActive)
	return mux, database
}

func TestHandleCreateMember(t *testing.T) {
	mux, _ := newTestMux(t)
	body := `{"full_name":"  Dana Reyes ","email":"Dana@Example.com","phone":"(650) 253-0000","membership_tier":"gold"}`

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/members", body, testutil.Member(1))); rec.Code != http.StatusForbidden {
		t.Fatalf("member create: expected 403, got %d", rec.Code)
	}

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/members", body, testutil.Staff(1)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got memberResponse
	testutil.DecodeBody(t, rec, &got)
	if got.FullName != "Dana Reyes" || got.Email != "dana@example.com" || got.Phone != "+16502530000" || got.MembershipTier != "Gold" {
		t.Fatalf("unexpected member %+v", got)
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/members", body, testutil.Staff(1))); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", rec.Code)
	}
	bad := `{"full_name":"Sam","email":"sam@example.com","membership_tier":"Platinum"}`
	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/members", bad, testutil.Staff(1))); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tier: expected 400, got %d", rec.Code)
	}
}

func TestHandleMemberAccess(t *testing.T) {
	mux, database := newTestMux(t)
	alice := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "12.50"})
	bob := testutil.CreateMember(t, database, testutil.MemberFixture{})

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, "/api/v1/members/me", "", testutil.Member(alice.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me memberResponse
	testutil.DecodeBody(t, rec, &me)
	if me.ID != alice.ID || me.WalletBalance.StringFixed(2) != "12.50" {
		t.Fatalf("unexpected me %+v", me)
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/members/%d", bob.ID), "", testutil.Member(alice.ID))); rec.Code != http.StatusForbidden {
		t.Fatalf("other member: expected 403, got %d", rec.Code)
	}
	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/members/%d", bob.ID), "", testutil.Staff(99))); rec.Code != http.StatusOK {
		t.Fatalf("staff get: expected 200, got %d", rec.Code)
	}
	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, "/api/v1/members/me", "", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: expected 401, got %d", rec.Code)
	}

	rec = testutil.Serve(mux, testutil.NewRequest(http.MethodGet, "/api/v1/members?limit=1", "", testutil.Staff(99)))
	var page []memberResponse
	testutil.DecodeBody(t, rec, &page)
	if len(page) != 1 {
		t.Fatalf("expected 1 member with limit=1, got %d", len(page))
	}
}

func TestHandleSetTierAndActive(t *testing.T) {
	mux, database := newTestMux(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{})

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/members/%d/tier", member.ID), `{"membership_tier":"VIP"}`, testutil.Staff(1)))
	if rec.Code != http.StatusOK {
		t.Fatalf("tier: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got memberResponse
	testutil.DecodeBody(t, rec, &got)
	if got.MembershipTier != "VIP" {
		t.Fatalf("expected VIP, got %s", got.MembershipTier)
	}

	rec = testutil.Serve(mux, testutil.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/members/%d/active", member.ID), `{"is_active":false}`, testutil.Staff(1)))
	if rec.Code != http.StatusOK {
		t.Fatalf("active: expected 200, got %d", rec.Code)
	}
	testutil.DecodeBody(t, rec, &got)
	if got.IsActive {
		t.Fatalf("expected member deactivated")
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPatch, "/api/v1/members/9999/active", `{"is_active":true}`, testutil.Staff(1))); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown member: expected 404, got %d", rec.Code)
	}
}
