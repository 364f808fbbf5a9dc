package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kmjmahal/billing/models"
)

const memberSelectQuery = `SELECT m.id, m.mahal_id, m.name, m.house_name, m.place, m.phone,
	m.created_at, m.updated_at,
	COALESCE((SELECT SUM(b.amount) FROM bills b WHERE b.mahal_id = m.mahal_id AND b.status = 'active'), 0),
	COALESCE((SELECT COUNT(*) FROM bills b WHERE b.mahal_id = m.mahal_id AND b.status = 'active'), 0)
	FROM members m`

func scanMember(scanner interface{ Scan(...any) error }) (models.Member, error) {
	var m models.Member
	err := scanner.Scan(&m.ID, &m.MahalID, &m.Name, &m.HouseName, &m.Place, &m.Phone,
		&m.CreatedAt, &m.UpdatedAt, &m.TotalPaid, &m.BillCount)
	return m, err
}

// lookupHousehold resolves a mahal id to its census record. Bill creation
// uses it to snapshot the member's name and address onto the receipt.
func lookupHousehold(mahalID string) (models.Member, error) {
	return scanMember(DB.QueryRow(memberSelectQuery+" WHERE m.mahal_id = ?", mahalID))
}

func mahalIDParam(r *http.Request) string {
	return chi.URLParam(r, "ward") + "/" + chi.URLParam(r, "house")
}

// ListMembers lists all household records
// @Summary      List members
// @Description  Get all household census records with payment summaries.
// @Tags         members
// @Produce      json
// @Param        search  query  string  false  "Search by name, house name, place, or mahal id"
// @Success      200  {object}  Response{data=[]models.Member}
// @Router       /members [get]
// @Security     BearerAuth
func ListMembers(w http.ResponseWriter, r *http.Request) {
	query := memberSelectQuery
	var conditions []string
	var args []any

	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(m.name LIKE ? OR m.house_name LIKE ? OR m.place LIKE ? OR m.mahal_id LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s, s, s)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.mahal_id"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		members = append(members, m)
	}
	if members == nil {
		members = []models.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// GetMember retrieves a single household record
// @Summary      Get member
// @Description  Get a household's census record and payment summary.
// @Tags         members
// @Produce      json
// @Param        ward   path  string  true  "Ward number"
// @Param        house  path  string  true  "House number"
// @Success      200  {object}  Response{data=models.Member}
// @Failure      404  {object}  Response{error=string}
// @Router       /members/{ward}/{house} [get]
// @Security     BearerAuth
func GetMember(w http.ResponseWriter, r *http.Request) {
	mahalID := mahalIDParam(r)
	if !Caller(r).CanAccess(mahalID) {
		writeError(w, http.StatusForbidden, "cannot view another household")
		return
	}
	m, err := lookupHousehold(mahalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "member not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateMember creates a new household record
// @Summary      Create member
// @Description  Register a household in the census.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        member  body      models.MemberInput  true  "Member contents"
// @Success      201     {object}  Response{data=models.Member}
// @Failure      400     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Router       /members [post]
// @Security     BearerAuth
func CreateMember(w http.ResponseWriter, r *http.Request) {
	var input models.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, err := DB.Exec("INSERT INTO members (mahal_id, name, house_name, place, phone) VALUES (?, ?, ?, ?, ?)",
		input.MahalID, input.Name, input.HouseName, input.Place, input.Phone)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "a member with this mahal_id already exists")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	m, err := lookupHousehold(input.MahalID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created member: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// UpdateMember updates an existing household record
// @Summary      Update member
// @Description  Update a household's census details. The mahal id itself is immutable.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        ward    path      string              true  "Ward number"
// @Param        house   path      string              true  "House number"
// @Param        member  body      models.MemberInput  true  "Updated member contents"
// @Success      200     {object}  Response{data=models.Member}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /members/{ward}/{house} [put]
// @Security     BearerAuth
func UpdateMember(w http.ResponseWriter, r *http.Request) {
	mahalID := mahalIDParam(r)
	var input models.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	input.MahalID = mahalID
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE members SET name = ?, house_name = ?, place = ?, phone = ?,
		updated_at = CURRENT_TIMESTAMP WHERE mahal_id = ?`,
		input.Name, input.HouseName, input.Place, input.Phone, mahalID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	m, err := lookupHousehold(mahalID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated member: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMember deletes a household record
// @Summary      Delete member
// @Description  Remove a household from the census. Refused while active bills reference it.
// @Tags         members
// @Produce      json
// @Param        ward   path  string  true  "Ward number"
// @Param        house  path  string  true  "House number"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /members/{ward}/{house} [delete]
// @Security     BearerAuth
func DeleteMember(w http.ResponseWriter, r *http.Request) {
	mahalID := mahalIDParam(r)

	var active int
	if err := DB.QueryRow("SELECT COUNT(*) FROM bills WHERE mahal_id = ? AND status = 'active'", mahalID).Scan(&active); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active > 0 {
		writeError(w, http.StatusConflict, "member has active bills and cannot be deleted")
		return
	}

	res, err := DB.Exec("DELETE FROM members WHERE mahal_id = ?", mahalID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
