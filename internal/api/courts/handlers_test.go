package courts

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/codr1/pickleclub/internal/availability"
	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/testutil"
)

func newTestMux(t *testing.T) (*http.ServeMux, *db.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	InitHandlers(database.Queries, availability.Hours{Opens: 8 * 60, Closes: 12 * 60})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/courts", HandleList)
	mux.HandleFunc("POST /api/v1/courts", HandleCreate)
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", HandleSlots)
	mux.HandleFunc("PATCH /api/v1/courts/{id}/active", HandleSetActive)
	return mux, database
}

func TestHandleSlots(t *testing.T) {
	mux, database := newTestMux(t)
	court := testutil.CreateCourt(t, database, "100")
	member := testutil.CreateMember(t, database, testutil.MemberFixture{})
	testutil.CreateBooking(t, database, member.ID, court.ID, "2030-06-03", "09:30", "10:30", "Confirmed")

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots?date=2030-06-03", court.ID), "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp slotsResponse
	testutil.DecodeBody(t, rec, &resp)

	want := []availability.Slot{
		{Start: "08:00", End: "09:00", Available: true},
		{Start: "09:00", End: "10:00", Available: false},
		{Start: "10:00", End: "11:00", Available: false},
		{Start: "11:00", End: "12:00", Available: true},
	}
	if len(resp.Slots) != len(want) {
		t.Fatalf("expected %d slots, got %+v", len(want), resp.Slots)
	}
	for i := range want {
		if resp.Slots[i] != want[i] {
			t.Fatalf("slot %d: expected %+v, got %+v", i, want[i], resp.Slots[i])
		}
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, "/api/v1/courts/999/slots?date=2030-06-03", "", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown court: expected 404, got %d", rec.Code)
	}
	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots", court.ID), "", nil)); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date: expected 400, got %d", rec.Code)
	}
}

func TestHandleCreateCourt(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "valid", body: `{"name":"Centre","court_type":"outdoor","price_per_hour":"42.50"}`, want: http.StatusCreated},
		{name: "missing name", body: `{"price_per_hour":"10"}`, want: http.StatusBadRequest},
		{name: "zero price", body: `{"name":"Free","price_per_hour":"0"}`, want: http.StatusBadRequest},
		{name: "unknown type", body: `{"name":"Grass","court_type":"Lawn","price_per_hour":"10"}`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/courts", tc.body, testutil.Staff(1)))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPost, "/api/v1/courts", tests[0].body, testutil.Member(1))); rec.Code != http.StatusForbidden {
		t.Fatalf("member create: expected 403, got %d", rec.Code)
	}

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodGet, "/api/v1/courts", "", nil))
	var courts []dbgen.Court
	testutil.DecodeBody(t, rec, &courts)
	if len(courts) != 1 || courts[0].CourtType != "Outdoor" || courts[0].PricePerHour.String() != "42.5" {
		t.Fatalf("unexpected courts %+v", courts)
	}
}

func TestHandleSetActive(t *testing.T) {
	mux, database := newTestMux(t)
	court := testutil.CreateCourt(t, database, "100")
	path := fmt.Sprintf("/api/v1/courts/%d/active", court.ID)

	rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPatch, path, `{"is_active":false}`, testutil.Staff(1)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got dbgen.Court
	testutil.DecodeBody(t, rec, &got)
	if got.IsActive {
		t.Fatalf("expected court deactivated")
	}

	if rec := testutil.Serve(mux, testutil.NewRequest(http.MethodPatch, "/api/v1/courts/999/active", `{"is_active":true}`, testutil.Staff(1))); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown court: expected 404, got %d", rec.Code)
	}
}
