package models

import "time"

// Member represents a household census record. Bills reference households by
// mahal_id and snapshot the name/address at creation time.
type Member struct {
	ID        int       `json:"id"`
	MahalID   string    `json:"mahal_id"`
	Name      string    `json:"name"`
	HouseName *string   `json:"house_name"`
	Place     *string   `json:"place"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Computed fields
	TotalPaid Money `json:"total_paid"`
	BillCount int   `json:"bill_count"`
}

// Address joins the household's locality fields into the single line printed
// on receipts.
func (m *Member) Address() string {
	var parts []string
	if m.HouseName != nil && *m.HouseName != "" {
		parts = append(parts, *m.HouseName)
	}
	if m.Place != nil && *m.Place != "" {
		parts = append(parts, *m.Place)
	}
	if m.Phone != nil && *m.Phone != "" {
		parts = append(parts, *m.Phone)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// MemberInput is used for creating/updating members.
type MemberInput struct {
	MahalID   string  `json:"mahal_id"`
	Name      string  `json:"name"`
	HouseName *string `json:"house_name"`
	Place     *string `json:"place"`
	Phone     *string `json:"phone"`
}

func (m *MemberInput) Validate() string {
	if !ValidMahalID(m.MahalID) {
		return "mahal_id must be in ward/house form, e.g. 12/34"
	}
	if m.Name == "" {
		return "name is required"
	}
	return ""
}
