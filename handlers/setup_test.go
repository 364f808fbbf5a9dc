package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kmjmahal/billing/db"
)

var adminIdentity = Identity{UserID: "admin1", Role: "admin"}

func userFor(mahalID string) Identity {
	return Identity{UserID: "user-" + mahalID, Role: "user", MahalID: mahalID}
}

// setupDB points the handlers package at a fresh temp database.
func setupDB(t *testing.T) {
	t.Helper()
	database, err := db.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	DB = database
	t.Cleanup(func() {
		database.Close()
		DB = nil
	})
}

// testRouter mirrors the API route table from main.go, with identity
// injected per-request instead of parsed from a token.
func testRouter() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bills", ListBills)
		r.Post("/bills", CreateBill)
		r.Get("/bills/receipt/{no}", GetBillByReceipt)
		r.Get("/bills/{id}", GetBill)

		r.Get("/members/{ward}/{house}", GetMember)
		r.Get("/members/{ward}/{house}/bills", MemberBills)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Put("/bills/{id}", UpdateBill)
			r.Delete("/bills/{id}", VoidBill)

			r.Get("/members", ListMembers)
			r.Post("/members", CreateMember)
			r.Put("/members/{ward}/{house}", UpdateMember)
			r.Delete("/members/{ward}/{house}", DeleteMember)

			r.Get("/stats/summary", StatsSummary)
			r.Get("/stats/by-category", StatsByCategory)
			r.Get("/stats/monthly", StatsMonthly)
			r.Get("/stats/top-households", StatsTopHouseholds)
			r.Get("/stats/recent", StatsRecent)

			r.Get("/counters/{name}", GetCounter)
			r.Post("/counters/{name}/reset", ResetCounter)
		})
	})
	return r
}

// envelope mirrors the Response JSON shape with the data left raw.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// do runs one request through the router as the given identity.
func do(t *testing.T, router chi.Router, id Identity, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(context.WithValue(req.Context(), identityKey, id))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

// decode unmarshals an envelope's data payload.
func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createTestMember(t *testing.T, router chi.Router, mahalID, name string) {
	t.Helper()
	house := "Test House"
	place := "Testville"
	code, _ := do(t, router, adminIdentity, http.MethodPost, "/api/v1/members", map[string]any{
		"mahal_id":   mahalID,
		"name":       name,
		"house_name": house,
		"place":      place,
	})
	require.Equal(t, http.StatusCreated, code)
}
