package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountClassificationProspect = "Prospect"
	AccountClassificationCustomer = "Customer"
)

// Account is the CRM organization record. It is never created by the bot.
type Account struct {
	ID             string
	Name           string
	Classification string
	Website        string
}

// IsProspect reports whether the account classification is "Prospect" in any casing
func (a Account) IsProspect() bool {
	return strings.EqualFold(strings.TrimSpace(a.Classification), AccountClassificationProspect)
}

// Contact is the CRM person record
type Contact struct {
	ID        string
	Name      string
	FirstName string
	LastName  string
	Email     string
	AccountID string
	// Account is populated when the lookup denormalized the owning account
	Account *Account
}

// Opportunity is the sales record created for prospect accounts
type Opportunity struct {
	ID        string
	Name      string
	AccountID string
	ContactID string
	CloseDate time.Time
}

// Subscription is an existing subscription record tied to an account
type Subscription struct {
	ID               string
	Name             string
	Status           string
	Amount           decimal.Decimal
	EndDate          string
	BillingAccountID string
}

// CreateResult is the outcome of a CRM record creation
type CreateResult struct {
	ID      string
	Success bool
	Errors  []string
}
