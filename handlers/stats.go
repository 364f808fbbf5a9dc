package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kmjmahal/billing/models"
)

type statsSummary struct {
	BillCount     int          `json:"bill_count"`
	TotalAmount   models.Money `json:"total_amount"`
	AverageAmount models.Money `json:"average_amount"`
}

// StatsSummary retrieves overall collection figures
// @Summary      Collection summary
// @Description  Count, sum and average of active bill amounts, optionally restricted to a date range.
// @Tags         stats
// @Produce      json
// @Param        from  query  string  false  "Bills created on or after (YYYY-MM-DD)"
// @Param        to    query  string  false  "Bills created on or before (YYYY-MM-DD)"
// @Success      200  {object}  Response{data=statsSummary}
// @Router       /stats/summary [get]
// @Security     BearerAuth
func StatsSummary(w http.ResponseWriter, r *http.Request) {
	query := "SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(AVG(amount), 0) FROM bills WHERE status = 'active'"
	var args []any
	if from := r.URL.Query().Get("from"); from != "" {
		query += " AND date(created_at) >= date(?)"
		args = append(args, from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		query += " AND date(created_at) <= date(?)"
		args = append(args, to)
	}

	var s statsSummary
	var avg float64
	if err := DB.QueryRow(query, args...).Scan(&s.BillCount, &s.TotalAmount, &avg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.AverageAmount = models.Money(avg)
	writeJSON(w, http.StatusOK, s)
}

type categoryRevenue struct {
	Category  string       `json:"category"`
	BillCount int          `json:"bill_count"`
	Revenue   models.Money `json:"revenue"`
}

// StatsByCategory retrieves revenue grouped by account category
// @Summary      Revenue by category
// @Description  Active-bill revenue per account category, highest first.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  Response{data=[]categoryRevenue}
// @Router       /stats/by-category [get]
// @Security     BearerAuth
func StatsByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(`SELECT category, COUNT(*), COALESCE(SUM(amount), 0) FROM bills
		WHERE status = 'active' GROUP BY category ORDER BY SUM(amount) DESC`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	out := []categoryRevenue{}
	for rows.Next() {
		var c categoryRevenue
		if err := rows.Scan(&c.Category, &c.BillCount, &c.Revenue); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

type monthRevenue struct {
	Month     string       `json:"month"` // YYYY-MM
	BillCount int          `json:"bill_count"`
	Revenue   models.Money `json:"revenue"`
}

// StatsMonthly retrieves revenue per calendar month over the trailing year
// @Summary      Monthly revenue
// @Description  Active-bill revenue for each of the trailing 12 calendar months. Months with no bills appear with zero revenue.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  Response{data=[]monthRevenue}
// @Router       /stats/monthly [get]
// @Security     BearerAuth
func StatsMonthly(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	rows, err := DB.Query(`SELECT strftime('%Y-%m', created_at), COUNT(*), COALESCE(SUM(amount), 0)
		FROM bills WHERE status = 'active' AND date(created_at) >= date(?)
		GROUP BY strftime('%Y-%m', created_at)`, start.Format("2006-01-02"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	byMonth := map[string]monthRevenue{}
	for rows.Next() {
		var m monthRevenue
		if err := rows.Scan(&m.Month, &m.BillCount, &m.Revenue); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		byMonth[m.Month] = m
	}

	// every month present, zero-filled, oldest first
	out := make([]monthRevenue, 0, 12)
	for i := 0; i < 12; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		if m, ok := byMonth[key]; ok {
			out = append(out, m)
		} else {
			out = append(out, monthRevenue{Month: key})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type householdTotal struct {
	MahalID    string       `json:"mahal_id"`
	MemberName string       `json:"member_name"`
	BillCount  int          `json:"bill_count"`
	TotalPaid  models.Money `json:"total_paid"`
}

// StatsTopHouseholds retrieves the highest-paying households
// @Summary      Top households
// @Description  Households ranked by total amount paid across active bills.
// @Tags         stats
// @Produce      json
// @Param        limit  query  int  false  "Number of households (default 10, max 100)"
// @Success      200  {object}  Response{data=[]householdTotal}
// @Router       /stats/top-households [get]
// @Security     BearerAuth
func StatsTopHouseholds(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := DB.Query(`SELECT mahal_id, member_name, COUNT(*), COALESCE(SUM(amount), 0)
		FROM bills WHERE status = 'active'
		GROUP BY mahal_id ORDER BY SUM(amount) DESC LIMIT ?`, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	out := []householdTotal{}
	for rows.Next() {
		var h householdTotal
		if err := rows.Scan(&h.MahalID, &h.MemberName, &h.BillCount, &h.TotalPaid); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, h)
	}
	writeJSON(w, http.StatusOK, out)
}

// StatsRecent retrieves the most recently recorded bills
// @Summary      Recent bills
// @Description  The most recent active bills, newest first.
// @Tags         stats
// @Produce      json
// @Param        limit  query  int  false  "Number of bills (default 5, max 100)"
// @Success      200  {object}  Response{data=[]models.Bill}
// @Router       /stats/recent [get]
// @Security     BearerAuth
func StatsRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 5
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := DB.Query(billSelectQuery+" WHERE b.status = 'active' ORDER BY b.created_at DESC LIMIT ?", limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	out := []models.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, b)
	}
	writeJSON(w, http.StatusOK, out)
}
