package store

import (
	"regexp"
	"strings"

	"github.com/craftculture/orders-api/internal/models"
	"github.com/shopspring/decimal"
)

// ValidationError is a request-shape failure detected before any store
// mutation. The message is safe to return to the caller verbatim.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	errIncompleteCustomer  = ValidationError("customer information is incomplete")
	errNameTooLong         = ValidationError("username and full name must be less than 100 characters")
	errNoItems             = ValidationError("order must contain at least one item")
	errInvalidTotal        = ValidationError("invalid total amount")
	errIncompleteAddress   = ValidationError("shipping address is incomplete")
	errInvalidPayment      = ValidationError("invalid payment method")
	errInvalidEmail        = ValidationError("invalid email format")
	errInvalidPhone        = ValidationError("invalid phone number format")
	errInvalidItem         = ValidationError("invalid item format in order")
	errInvalidItemQuantity = ValidationError("invalid item quantity or offer")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s()-]{8,}$`)
)

type PlaceOrderRequest struct {
	Username      string             `json:"username"`
	FullName      string             `json:"fullName"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Items         []models.OrderItem `json:"items"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Address       models.Address     `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

// Validate checks request shape and formats only; store state (stock,
// current prices) is checked later inside the reservation transaction.
func (r *PlaceOrderRequest) Validate() error {
	username := strings.TrimSpace(r.Username)
	fullName := strings.TrimSpace(r.FullName)
	email := strings.TrimSpace(r.Email)
	phone := strings.TrimSpace(r.Phone)

	if username == "" || fullName == "" || email == "" || phone == "" {
		return errIncompleteCustomer
	}
	if len(username) > 100 || len(fullName) > 100 {
		return errNameTooLong
	}
	if len(r.Items) == 0 {
		return errNoItems
	}
	if !r.TotalAmount.IsPositive() {
		return errInvalidTotal
	}
	if strings.TrimSpace(r.Address.Street) == "" ||
		strings.TrimSpace(r.Address.City) == "" ||
		strings.TrimSpace(r.Address.State) == "" ||
		strings.TrimSpace(r.Address.PostalCode) == "" {
		return errIncompleteAddress
	}
	if !models.PaymentMethod(r.PaymentMethod).Valid() {
		return errInvalidPayment
	}
	if !emailRe.MatchString(email) {
		return errInvalidEmail
	}
	if !phoneRe.MatchString(phone) {
		return errInvalidPhone
	}

	for _, item := range r.Items {
		if item.ProductID == "" || item.Name == "" || item.Price.IsNegative() {
			return errInvalidItem
		}
		if item.Quantity <= 0 || item.Offer.IsNegative() || item.Offer.GreaterThan(hundredPercent) {
			return errInvalidItemQuantity
		}
	}

	return nil
}

var hundredPercent = decimal.NewFromInt(100)

// Normalize trims identity fields and lower-cases the email, matching what
// gets persisted on the order.
func (r *PlaceOrderRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}
