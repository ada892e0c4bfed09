package salesforce

import (
	"github.com/shopspring/decimal"

	"inboundbot/models"
)

const (
	ObjectAccount      = "Account"
	ObjectContact      = "Contact"
	ObjectOpportunity  = "Opportunity"
	ObjectSubscription = "Subscription__c"
)

var (
	AccountFields = []string{"Id", "Name", "Type", "Website"}
	ContactFields = []string{"Id", "Name", "FirstName", "LastName", "Email", "AccountId"}
	// ContactWithAccountFields denormalizes the owning account into a contact query
	ContactWithAccountFields = append(append([]string{}, ContactFields...),
		"Account.Id", "Account.Name", "Account.Type", "Account.Website")
	SubscriptionFields = []string{"Id", "Name", "Status__c", "ARR__c", "End_Date__c", "Billing_Account__c"}
)

type AccountRecord struct {
	ID      string `json:"Id"`
	Name    string `json:"Name"`
	Type    string `json:"Type"`
	Website string `json:"Website"`
}

func (r AccountRecord) ToModel() *models.Account {
	return &models.Account{
		ID:             r.ID,
		Name:           r.Name,
		Classification: r.Type,
		Website:        r.Website,
	}
}

type ContactRecord struct {
	ID        string         `json:"Id"`
	Name      string         `json:"Name"`
	FirstName string         `json:"FirstName"`
	LastName  string         `json:"LastName"`
	Email     string         `json:"Email"`
	AccountID string         `json:"AccountId"`
	Account   *AccountRecord `json:"Account"`
}

func (r ContactRecord) ToModel() *models.Contact {
	contact := &models.Contact{
		ID:        r.ID,
		Name:      r.Name,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		AccountID: r.AccountID,
	}
	if r.Account != nil && r.Account.ID != "" {
		contact.Account = r.Account.ToModel()
	}
	return contact
}

type SubscriptionRecord struct {
	ID               string              `json:"Id"`
	Name             string              `json:"Name"`
	Status           string              `json:"Status__c"`
	ARR              decimal.NullDecimal `json:"ARR__c"`
	EndDate          string              `json:"End_Date__c"`
	BillingAccountID string              `json:"Billing_Account__c"`
}

func (r SubscriptionRecord) ToModel() *models.Subscription {
	return &models.Subscription{
		ID:               r.ID,
		Name:             r.Name,
		Status:           r.Status,
		Amount:           r.ARR.Decimal,
		EndDate:          r.EndDate,
		BillingAccountID: r.BillingAccountID,
	}
}
