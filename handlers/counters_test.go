package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmjmahal/billing/models"
)

func TestCounterEndpoints(t *testing.T) {
	setupDB(t)
	router := testRouter()
	createTestMember(t, router, "5/10", "Abdul Rahman")

	// an untouched sequence reads as zero
	code, env := do(t, router, adminIdentity, http.MethodGet, "/api/v1/counters/bill", nil)
	require.Equal(t, http.StatusOK, code)
	c := decode[models.Counter](t, env)
	assert.Equal(t, "bill", c.Name)
	assert.Equal(t, int64(0), c.Value)

	code, _ = do(t, router, adminIdentity, http.MethodPost, "/api/v1/bills", map[string]any{
		"mahal_id": "5/10", "amount": 100, "category": "Donation",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = do(t, router, adminIdentity, http.MethodGet, "/api/v1/counters/bill", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[models.Counter](t, env).Value)

	// after an explicit reset, receipt numbers continue from value+1
	code, env = do(t, router, adminIdentity, http.MethodPost, "/api/v1/counters/bill/reset", map[string]any{"value": 500})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(500), decode[models.Counter](t, env).Value)

	code, env = do(t, router, adminIdentity, http.MethodPost, "/api/v1/bills", map[string]any{
		"mahal_id": "5/10", "amount": 100, "category": "Donation",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, int64(501), decode[models.Bill](t, env).ReceiptNo)

	// negative values are rejected
	code, _ = do(t, router, adminIdentity, http.MethodPost, "/api/v1/counters/bill/reset", map[string]any{"value": -1})
	assert.Equal(t, http.StatusBadRequest, code)
}
