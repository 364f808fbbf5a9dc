package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmjmahal/billing/counter"
	"github.com/kmjmahal/billing/models"
)

// GetCounter retrieves a sequence counter's state
// @Summary      Get counter
// @Description  Get the current value and reset policy of a named sequence. Unknown sequences report value 0.
// @Tags         counters
// @Produce      json
// @Param        name  path  string  true  "Sequence name, e.g. bill"
// @Success      200  {object}  Response{data=models.Counter}
// @Router       /counters/{name} [get]
// @Security     BearerAuth
func GetCounter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var c models.Counter
	err := DB.QueryRow("SELECT name, value, prefix, reset_frequency, last_reset FROM counters WHERE name = ?", name).
		Scan(&c.Name, &c.Value, &c.Prefix, &c.ResetFrequency, &c.LastReset)
	if errors.Is(err, sql.ErrNoRows) {
		// lazily-created sequences read as zero before first use
		writeJSON(w, http.StatusOK, models.Counter{Name: name, ResetFrequency: "never"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ResetCounter sets a sequence counter to an explicit value
// @Summary      Reset counter
// @Description  Set a named sequence to an explicit value. The next issued number is value+1.
// @Tags         counters
// @Accept       json
// @Produce      json
// @Param        name  path      string               true  "Sequence name"
// @Param        body  body      models.CounterReset  true  "New value"
// @Success      200   {object}  Response{data=models.Counter}
// @Failure      400   {object}  Response{error=string}
// @Router       /counters/{name}/reset [post]
// @Security     BearerAuth
func ResetCounter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req models.CounterReset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := counter.Reset(DB, name, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var c models.Counter
	if err := DB.QueryRow("SELECT name, value, prefix, reset_frequency, last_reset FROM counters WHERE name = ?", name).
		Scan(&c.Name, &c.Value, &c.Prefix, &c.ResetFrequency, &c.LastReset); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}
