// Package schema holds the sObject payloads sent to and read from the
// Salesforce REST API.
package schema

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Account field names as the REST API spells them.
const (
	FieldName               = "Name"
	FieldNumberOfEmployees  = "NumberOfEmployees"
	FieldShippingState      = "ShippingState"
	FieldShippingPostalCode = "ShippingPostalCode"
	FieldShippingCity       = "ShippingCity"
	FieldShippingStreet     = "ShippingStreet"
)

// accountFields is the serialization order.
var accountFields = []string{
	FieldName,
	FieldNumberOfEmployees,
	FieldShippingState,
	FieldShippingPostalCode,
	FieldShippingCity,
	FieldShippingStreet,
}

// Account is the payload for creating or updating an Account. It remembers
// which fields were set explicitly so an update can carry only those.
// An Account is immutable once built.
type Account struct {
	name               string
	numberOfEmployees  int
	shippingState      string
	shippingPostalCode string
	shippingCity       string
	shippingStreet     string

	set map[string]bool
}

// AccountField sets one field of an Account under construction.
type AccountField func(*Account)

// WithName sets the account Name.
func WithName(v string) AccountField {
	return func(a *Account) { a.name = v; a.set[FieldName] = true }
}

// WithNumberOfEmployees sets NumberOfEmployees. Zero still counts as set.
func WithNumberOfEmployees(v int) AccountField {
	return func(a *Account) { a.numberOfEmployees = v; a.set[FieldNumberOfEmployees] = true }
}

// WithShippingState sets ShippingState.
func WithShippingState(v string) AccountField {
	return func(a *Account) { a.shippingState = v; a.set[FieldShippingState] = true }
}

// WithShippingPostalCode sets ShippingPostalCode.
func WithShippingPostalCode(v string) AccountField {
	return func(a *Account) { a.shippingPostalCode = v; a.set[FieldShippingPostalCode] = true }
}

// WithShippingCity sets ShippingCity.
func WithShippingCity(v string) AccountField {
	return func(a *Account) { a.shippingCity = v; a.set[FieldShippingCity] = true }
}

// WithShippingStreet sets ShippingStreet.
func WithShippingStreet(v string) AccountField {
	return func(a *Account) { a.shippingStreet = v; a.set[FieldShippingStreet] = true }
}

// NewAccount builds an Account. Fields not passed keep their zero value and
// are reported as unset.
func NewAccount(fields ...AccountField) *Account {
	a := &Account{set: make(map[string]bool, len(accountFields))}
	for _, f := range fields {
		f(a)
	}
	return a
}

func (a *Account) Name() string               { return a.name }
func (a *Account) NumberOfEmployees() int     { return a.numberOfEmployees }
func (a *Account) ShippingState() string      { return a.shippingState }
func (a *Account) ShippingPostalCode() string { return a.shippingPostalCode }
func (a *Account) ShippingCity() string       { return a.shippingCity }
func (a *Account) ShippingStreet() string     { return a.shippingStreet }

// IsSet reports whether field was passed to NewAccount.
func (a *Account) IsSet(field string) bool {
	return a.set[field]
}

// Fields returns the names of the explicitly set fields in serialization order.
func (a *Account) Fields() []string {
	out := make([]string, 0, len(a.set))
	for _, f := range accountFields {
		if a.set[f] {
			out = append(out, f)
		}
	}
	return out
}

func (a *Account) value(field string) interface{} {
	switch field {
	case FieldName:
		return a.name
	case FieldNumberOfEmployees:
		return a.numberOfEmployees
	case FieldShippingState:
		return a.shippingState
	case FieldShippingPostalCode:
		return a.shippingPostalCode
	case FieldShippingCity:
		return a.shippingCity
	case FieldShippingStreet:
		return a.shippingStreet
	}
	return nil
}

// JSON serializes the account. With excludeUnset only explicitly set fields
// are emitted, which is what a PATCH update needs.
func (a *Account) JSON(excludeUnset bool) ([]byte, error) {
	out := []byte("{}")
	for _, field := range accountFields {
		if excludeUnset && !a.set[field] {
			continue
		}
		var err error
		out, err = sjson.SetBytes(out, field, a.value(field))
		if err != nil {
			return nil, fmt.Errorf("failed to set account field %s: %w", field, err)
		}
	}
	return out, nil
}

// MarshalJSON emits every field, defaults included.
func (a *Account) MarshalJSON() ([]byte, error) {
	return a.JSON(false)
}
