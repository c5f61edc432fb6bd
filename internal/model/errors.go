package model

import "errors"

var (
	// ErrRequestNotFound is returned when a delivery request id does not
	// exist in the store. Callers that want the historical ignore-and-move-on
	// behavior can drop it; the store is never touched.
	ErrRequestNotFound = errors.New("delivery request not found")

	// ErrCustomerRequired blocks a transition to concluida that arrived
	// without a resolved customer, so no billing state can be generated
	// against an unknown party.
	ErrCustomerRequired = errors.New("resolved customer is required to complete a request")

	ErrCustomerNotFound = errors.New("customer not found")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrInvoiceClosed    = errors.New("invoice is already closed")
)
