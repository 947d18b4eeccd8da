package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductUnavailable = errors.New("product is currently not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPriceMismatch      = errors.New("price or offer mismatch")
	ErrTotalMismatch      = errors.New("total amount calculation mismatch")
	ErrOrderCancelled     = errors.New("cannot update status of cancelled order")
)

// IsBusinessError reports whether err is one of the order-workflow rule
// violations that the HTTP layer answers with 400 rather than 500.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrProductUnavailable) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrPriceMismatch) ||
		errors.Is(err, ErrTotalMismatch)
}
