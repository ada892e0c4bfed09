package models

import (
	"github.com/samber/mo"
)

// PersonName is a two-token person name pulled out of a notification
type PersonName struct {
	FirstName string
	LastName  string
}

func (n PersonName) String() string {
	return n.FirstName + " " + n.LastName
}

// ExtractedFields holds the best-effort fields parsed from a notification body.
// Only Email is required downstream.
type ExtractedFields struct {
	Email       mo.Option[string]
	CompanyName mo.Option[string]
	PersonName  mo.Option[PersonName]
}
