package models

import (
	"regexp"
	"strings"
	"time"
)

// Categories is the closed set of payment purposes a bill may be recorded
// against. Free-text categories are rejected.
var Categories = []string{
	"Donation",
	"Marriage Fee",
	"Madrassa Fee",
	"Madrassa Donation",
	"Land Rent",
	"Land Lease",
	"Building Rent",
	"Nercha",
	"Eid Al-Fitr",
	"Eid Al-Adha",
	"Ramadan Collection",
	"Jumua Collection",
	"Sadhu Welfare",
	"Death Fund",
	"Certificate Fee",
	"Other",
}

// PaymentMethods accepted on a bill.
var PaymentMethods = []string{"Cash", "UPI", "Card", "Bank Transfer", "Cheque"}

// Bill statuses. Bills are never hard-deleted; voiding keeps the row with
// audit fields for the financial trail.
const (
	BillStatusActive = "active"
	BillStatusVoided = "voided"
)

// mahal ids are "ward/house", e.g. "12/34"
var mahalIDPattern = regexp.MustCompile(`^[0-9]+/[0-9]+$`)

// ValidMahalID reports whether s is a well-formed household identifier.
func ValidMahalID(s string) bool { return mahalIDPattern.MatchString(s) }

// ValidCategory reports whether c is one of the fixed account categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Bill represents one recorded payment against a household, identified to
// humans by its sequential receipt number.
type Bill struct {
	ID            int        `json:"id"`
	ReceiptNo     int64      `json:"receipt_no"`
	MahalID       string     `json:"mahal_id"`
	MemberName    string     `json:"member_name"`
	Address       *string    `json:"address"`
	Amount        Money      `json:"amount"`
	AmountWords   string     `json:"amount_words"`
	Category      string     `json:"category"`
	PaymentMethod string     `json:"payment_method"`
	Notes         *string    `json:"notes"`
	FinancialYear string     `json:"financial_year"`
	Status        string     `json:"status"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	VoidedBy      *string    `json:"voided_by,omitempty"`
	VoidedAt      *time.Time `json:"voided_at,omitempty"`
	VoidReason    *string    `json:"void_reason,omitempty"`
}

// BillInput is used for creating bills. Amount, category and the receipt
// number assigned at creation are immutable afterwards.
type BillInput struct {
	MahalID       string  `json:"mahal_id"`
	Amount        Money   `json:"amount"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method"`
	Notes         *string `json:"notes"`
}

func (b *BillInput) Validate() string {
	if !ValidMahalID(b.MahalID) {
		return "mahal_id must be in ward/house form, e.g. 12/34"
	}
	if b.Amount <= 0 {
		return "amount must be positive"
	}
	if !ValidCategory(b.Category) {
		return "category must be one of: " + strings.Join(Categories, ", ")
	}
	if b.PaymentMethod == "" {
		b.PaymentMethod = "Cash"
	}
	switch b.PaymentMethod {
	case "Cash", "UPI", "Card", "Bank Transfer", "Cheque":
	default:
		return "payment_method must be one of: " + strings.Join(PaymentMethods, ", ")
	}
	return ""
}

// BillUpdate carries the only fields an administrator may change after
// creation.
type BillUpdate struct {
	PaymentMethod string  `json:"payment_method"`
	Notes         *string `json:"notes"`
}

func (b *BillUpdate) Validate() string {
	if b.PaymentMethod == "" {
		return "payment_method is required"
	}
	switch b.PaymentMethod {
	case "Cash", "UPI", "Card", "Bank Transfer", "Cheque":
	default:
		return "payment_method must be one of: " + strings.Join(PaymentMethods, ", ")
	}
	return ""
}
