package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kmjmahal/billing/counter"
	"github.com/kmjmahal/billing/fiscal"
	"github.com/kmjmahal/billing/models"
	"github.com/kmjmahal/billing/numwords"
)

const billSelectQuery = `SELECT b.id, b.receipt_no, b.mahal_id, b.member_name, b.address,
	b.amount, b.amount_words, b.category, b.payment_method, b.notes, b.financial_year,
	b.status, b.created_by, b.created_at, b.voided_by, b.voided_at, b.void_reason
	FROM bills b`

func scanBill(scanner interface{ Scan(...any) error }) (models.Bill, error) {
	var b models.Bill
	err := scanner.Scan(&b.ID, &b.ReceiptNo, &b.MahalID, &b.MemberName, &b.Address,
		&b.Amount, &b.AmountWords, &b.Category, &b.PaymentMethod, &b.Notes, &b.FinancialYear,
		&b.Status, &b.CreatedBy, &b.CreatedAt, &b.VoidedBy, &b.VoidedAt, &b.VoidReason)
	return b, err
}

func getBillByID(id int) (models.Bill, error) {
	return scanBill(DB.QueryRow(billSelectQuery+" WHERE b.id = ?", id))
}

// columns callers may sort bill listings by
var billSortColumns = map[string]bool{
	"id": true, "receipt_no": true, "mahal_id": true, "amount": true,
	"category": true, "financial_year": true, "created_at": true,
}

// billPage is a paginated bill listing.
type billPage struct {
	Bills []models.Bill `json:"bills"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// CreateBill records a payment and issues the next receipt number
// @Summary      Create bill
// @Description  Record a payment for a household. Issues a sequential receipt number and renders the amount in words.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        bill  body      models.BillInput  true  "Bill contents"
// @Success      201   {object}  Response{data=models.Bill}
// @Failure      400   {object}  Response{error=string}
// @Failure      403   {object}  Response{error=string}
// @Failure      404   {object}  Response{error=string}
// @Router       /bills [post]
// @Security     BearerAuth
func CreateBill(w http.ResponseWriter, r *http.Request) {
	var input models.BillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// All validation happens before the counter is touched, so a rejected
	// request never consumes a receipt number.
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	caller := Caller(r)
	if !caller.CanAccess(input.MahalID) {
		writeError(w, http.StatusForbidden, "cannot bill another household")
		return
	}

	member, err := lookupHousehold(input.MahalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "household not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Receipt number and bill row commit or roll back together.
	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	receiptNo, err := counter.Next(tx, counter.SequenceBill)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	var id int
	err = tx.QueryRow(`INSERT INTO bills (receipt_no, mahal_id, member_name, address, amount, amount_words,
		category, payment_method, notes, financial_year, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		receiptNo, input.MahalID, member.Name, member.Address(), int64(input.Amount),
		numwords.FromPaise(int64(input.Amount)), input.Category, input.PaymentMethod,
		input.Notes, fiscal.Year(now), caller.UserID).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	b, err := getBillByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created bill: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListBills lists bills with filters and pagination
// @Summary      List bills
// @Description  Get bills filtered by household, category, financial year or date range. Non-admins only see their own household. Voided bills are excluded unless status=voided or status=all.
// @Tags         bills
// @Produce      json
// @Param        mahal_id        query  string  false  "Filter by household (ward/house)"
// @Param        category        query  string  false  "Filter by account category"
// @Param        financial_year  query  string  false  "Filter by financial year (YYYY-YY)"
// @Param        from            query  string  false  "Bills created on or after (YYYY-MM-DD)"
// @Param        to              query  string  false  "Bills created on or before (YYYY-MM-DD)"
// @Param        status          query  string  false  "active (default), voided, or all"
// @Param        page            query  int     false  "Page number (default 1)"
// @Param        limit           query  int     false  "Page size (default 20, max 100)"
// @Param        sort            query  string  false  "Sort column (default created_at)"
// @Param        order           query  string  false  "asc or desc (default desc)"
// @Success      200  {object}  Response{data=billPage}
// @Router       /bills [get]
// @Security     BearerAuth
func ListBills(w http.ResponseWriter, r *http.Request) {
	caller := Caller(r)
	var conditions []string
	var args []any

	if mid := r.URL.Query().Get("mahal_id"); mid != "" {
		if !caller.CanAccess(mid) {
			writeError(w, http.StatusForbidden, "cannot view another household's bills")
			return
		}
		conditions = append(conditions, "b.mahal_id = ?")
		args = append(args, mid)
	} else if !caller.Admin() {
		// non-admins are always scoped to their own household
		conditions = append(conditions, "b.mahal_id = ?")
		args = append(args, caller.MahalID)
	}
	if c := r.URL.Query().Get("category"); c != "" {
		conditions = append(conditions, "b.category = ?")
		args = append(args, c)
	}
	if fy := r.URL.Query().Get("financial_year"); fy != "" {
		conditions = append(conditions, "b.financial_year = ?")
		args = append(args, fy)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		conditions = append(conditions, "date(b.created_at) >= date(?)")
		args = append(args, from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		conditions = append(conditions, "date(b.created_at) <= date(?)")
		args = append(args, to)
	}
	switch s := r.URL.Query().Get("status"); s {
	case "", "active":
		conditions = append(conditions, "b.status = 'active'")
	case "voided":
		conditions = append(conditions, "b.status = 'voided'")
	case "all":
	default:
		writeError(w, http.StatusBadRequest, "status must be active, voided or all")
		return
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = "created_at"
	}
	if !billSortColumns[sort] {
		writeError(w, http.StatusBadRequest, "invalid sort column")
		return
	}
	order := "DESC"
	if strings.EqualFold(r.URL.Query().Get("order"), "asc") {
		order = "ASC"
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var total int
	if err := DB.QueryRow("SELECT COUNT(*) FROM bills b"+where, args...).Scan(&total); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := billSelectQuery + where + " ORDER BY b." + sort + " " + order + " LIMIT ? OFFSET ?"
	rows, err := DB.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		bills = append(bills, b)
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	writeJSON(w, http.StatusOK, billPage{Bills: bills, Page: page, Limit: limit, Total: total})
}

// GetBill retrieves a single bill by ID
// @Summary      Get bill
// @Description  Get a bill by internal id. Voided bills remain retrievable with their void metadata.
// @Tags         bills
// @Produce      json
// @Param        id   path      int  true  "Bill ID"
// @Success      200  {object}  Response{data=models.Bill}
// @Failure      404  {object}  Response{error=string}
// @Router       /bills/{id} [get]
// @Security     BearerAuth
func GetBill(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b, err := getBillByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if !Caller(r).CanAccess(b.MahalID) {
		writeError(w, http.StatusForbidden, "cannot view another household's bills")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GetBillByReceipt retrieves a single bill by receipt number
// @Summary      Get bill by receipt number
// @Description  Get a bill by the human-facing receipt number printed on it.
// @Tags         bills
// @Produce      json
// @Param        no   path      int  true  "Receipt number"
// @Success      200  {object}  Response{data=models.Bill}
// @Failure      404  {object}  Response{error=string}
// @Router       /bills/receipt/{no} [get]
// @Security     BearerAuth
func GetBillByReceipt(w http.ResponseWriter, r *http.Request) {
	no, _ := strconv.ParseInt(chi.URLParam(r, "no"), 10, 64)
	b, err := scanBill(DB.QueryRow(billSelectQuery+" WHERE b.receipt_no = ?", no))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if !Caller(r).CanAccess(b.MahalID) {
		writeError(w, http.StatusForbidden, "cannot view another household's bills")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// UpdateBill updates the mutable fields of a bill
// @Summary      Update bill
// @Description  Change notes or payment method. Amount, category and receipt number are immutable.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Bill ID"
// @Param        bill  body      models.BillUpdate  true  "Updated fields"
// @Success      200   {object}  Response{data=models.Bill}
// @Failure      400   {object}  Response{error=string}
// @Failure      404   {object}  Response{error=string}
// @Router       /bills/{id} [put]
// @Security     BearerAuth
func UpdateBill(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.BillUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec("UPDATE bills SET payment_method = ?, notes = ? WHERE id = ?",
		input.PaymentMethod, input.Notes, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}
	b, err := getBillByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated bill: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// voidRequest carries the optional reason for voiding a bill.
type voidRequest struct {
	Reason string `json:"reason"`
}

// VoidBill voids a bill, keeping the row for audit
// @Summary      Void bill
// @Description  Mark a bill voided. The record is retained with who/when/why and excluded from listings and totals.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id    path      int          true   "Bill ID"
// @Param        body  body      voidRequest  false  "Void reason"
// @Success      200   {object}  Response{data=models.Bill}
// @Failure      404   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Router       /bills/{id} [delete]
// @Security     BearerAuth
func VoidBill(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var req voidRequest
	json.NewDecoder(r.Body).Decode(&req)

	res, err := DB.Exec(`UPDATE bills SET status = 'voided', voided_by = ?, voided_at = CURRENT_TIMESTAMP, void_reason = ?
		WHERE id = ? AND status = 'active'`, Caller(r).UserID, req.Reason, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := getBillByID(id); errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
		} else {
			writeError(w, http.StatusConflict, "bill already voided")
		}
		return
	}
	b, err := getBillByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// memberBills is a household's recent bills plus its lifetime total.
type memberBills struct {
	MahalID    string        `json:"mahal_id"`
	Bills      []models.Bill `json:"bills"`
	TotalPaid  models.Money  `json:"total_paid"`
	TotalBills int           `json:"total_bills"`
}

// MemberBills retrieves a household's recent bills and running total
// @Summary      Get member bills
// @Description  Get a household's most recent bills and the total of all amounts it has ever paid (voided bills excluded).
// @Tags         members
// @Produce      json
// @Param        ward   path   string  true   "Ward number"
// @Param        house  path   string  true   "House number"
// @Param        limit  query  int     false  "Number of recent bills (default 10)"
// @Success      200  {object}  Response{data=memberBills}
// @Failure      404  {object}  Response{error=string}
// @Router       /members/{ward}/{house}/bills [get]
// @Security     BearerAuth
func MemberBills(w http.ResponseWriter, r *http.Request) {
	mahalID := chi.URLParam(r, "ward") + "/" + chi.URLParam(r, "house")
	if !Caller(r).CanAccess(mahalID) {
		writeError(w, http.StatusForbidden, "cannot view another household's bills")
		return
	}
	if _, err := lookupHousehold(mahalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "household not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	out := memberBills{MahalID: mahalID, Bills: []models.Bill{}}
	err := DB.QueryRow(`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM bills
		WHERE mahal_id = ? AND status = 'active'`, mahalID).Scan(&out.TotalPaid, &out.TotalBills)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows, err := DB.Query(billSelectQuery+` WHERE b.mahal_id = ? AND b.status = 'active'
		ORDER BY b.created_at DESC LIMIT ?`, mahalID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Bills = append(out.Bills, b)
	}
	writeJSON(w, http.StatusOK, out)
}
