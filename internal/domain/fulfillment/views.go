package fulfillment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotAvailable is printed wherever a value cannot be derived.
const NotAvailable = "N/A"

// OrderView is the read-only projection of a paid order.
type OrderView struct {
	ID              uuid.UUID
	UserID          *uuid.UUID // nil for guest orders
	QrCodeID        uuid.UUID
	Quantity        int
	ShippingAddress string
	Total           decimal.Decimal
	Status          string
	CreatedAt       time.Time
}

// Number returns the display order number
func (o *OrderView) Number() string {
	return OrderNumber(o.ID)
}

// FormattedTotal returns the total with two decimals
func (o *OrderView) FormattedTotal() string {
	return o.Total.StringFixed(2)
}

// UserView is the read-only projection of the customer who placed an order.
type UserView struct {
	Email     string
	FirstName string
	LastName  string
	Company   string
}

// FullName returns "First Last", or an empty string when neither is set
func (u *UserView) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DisplayName returns the full name, falling back to the email address.
// A nil user yields NotAvailable.
func (u *UserView) DisplayName() string {
	if u == nil {
		return NotAvailable
	}
	if name := u.FullName(); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return NotAvailable
}

// QrCodeView is the read-only projection of the QR code being printed.
type QrCodeView struct {
	ID              uuid.UUID
	Name            string
	ShortCode       string
	ForegroundColor string // #RRGGBB, empty for default
	BackgroundColor string // #RRGGBB, empty for default
}

// ScanURL builds the short link encoded into the printed symbol
func (q *QrCodeView) ScanURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + q.ShortCode
}

// OrderNumber derives the short display number of an order: the first
// eight characters of its identifier, upper-cased.
func OrderNumber(id uuid.UUID) string {
	s := id.String()
	return strings.ToUpper(s[:8])
}
