package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/mo"

	"inboundbot/clients"
	"inboundbot/clients/salesforce"
	"inboundbot/core"
	"inboundbot/models"
	"inboundbot/services"
)

const defaultContactScanLimit = 200

type Config struct {
	// AccountDomainField is an optional Account field holding the bare company domain
	AccountDomainField string
	// ContactScanLimit bounds the in-memory email scan over an account's contacts
	ContactScanLimit uint64
}

type ResolverService struct {
	crm                services.CRMSession
	accountDomainField string
	contactScanLimit   uint64
}

func NewResolverService(crm services.CRMSession, cfg Config) *ResolverService {
	scanLimit := cfg.ContactScanLimit
	if scanLimit == 0 {
		scanLimit = defaultContactScanLimit
	}
	return &ResolverService{
		crm:                crm,
		accountDomainField: cfg.AccountDomainField,
		contactScanLimit:   scanLimit,
	}
}

// Resolve finds the contact and account for the extracted fields. Lookups that find
// nothing produce a failure Resolution; CRM errors are returned as errors.
func (s *ResolverService) Resolve(ctx context.Context, fields models.ExtractedFields) (*models.Resolution, error) {
	if !fields.Email.IsPresent() {
		return nil, fmt.Errorf("email is required to resolve a contact")
	}
	email := normalizeEmail(fields.Email.MustGet())
	log.Printf("📋 Starting to resolve contact for %s", email)

	maybeContact, err := s.findContactByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact by email: %w", err)
	}
	if maybeContact.IsPresent() {
		contact := maybeContact.MustGet()
		log.Printf("🔍 Found contact %s by email", contact.ID)
		return s.resolveContactAccount(ctx, contact), nil
	}

	maybeAccount, matchedBy, err := s.findAccount(ctx, email, fields.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if !maybeAccount.IsPresent() {
		log.Printf("⚠️ No contact or account found for %s", email)
		return models.NewResolutionFailure(models.ResolutionFailureNoContactNoAccount, "no contact with this email and no account matched the email domain or company name"), nil
	}
	account := maybeAccount.MustGet()
	log.Printf("🔍 Found account %s (%s) by %s", account.ID, account.Name, matchedBy)

	maybeContact, err = s.findContactOnAccount(ctx, account.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact on account %s: %w", account.ID, err)
	}
	if maybeContact.IsPresent() {
		contact := maybeContact.MustGet()
		contact.Account = account
		log.Printf("📋 Completed successfully - found contact %s on account %s", contact.ID, account.ID)
		return &models.Resolution{Contact: contact, Account: account, MatchedBy: matchedBy}, nil
	}

	if !fields.PersonName.IsPresent() {
		log.Printf("⚠️ Account %s found but no admin name to create a contact for %s", account.ID, email)
		return &models.Resolution{
			Account:       account,
			MatchedBy:     matchedBy,
			Failure:       models.ResolutionFailureNoContactAmbiguousName,
			FailureDetail: fmt.Sprintf("account %s was found but the admin name could not be extracted", account.Name),
		}, nil
	}

	contact, err := s.createContact(ctx, account, fields.PersonName.MustGet(), email)
	if err != nil {
		log.Printf("❌ Failed to create contact for %s on account %s: %v", email, account.ID, err)
		return &models.Resolution{
			Account:       account,
			MatchedBy:     matchedBy,
			Failure:       models.ResolutionFailureContactCreationFailed,
			FailureDetail: err.Error(),
		}, nil
	}

	log.Printf("📋 Completed successfully - created contact %s on account %s", contact.ID, account.ID)
	return &models.Resolution{Contact: contact, Account: account, ContactCreated: true, MatchedBy: matchedBy}, nil
}

func (s *ResolverService) findContactByEmail(ctx context.Context, email string) (mo.Option[*models.Contact], error) {
	return s.queryFirstContact(ctx, salesforce.Select(salesforce.ContactWithAccountFields...).
		From(salesforce.ObjectContact).
		Where(sq.Eq{"Email": email}).
		OrderBy("CreatedDate ASC").
		Limit(1))
}

// resolveContactAccount uses the denormalized account or re-fetches it by id
func (s *ResolverService) resolveContactAccount(ctx context.Context, contact *models.Contact) *models.Resolution {
	if contact.Account != nil {
		return &models.Resolution{Contact: contact, Account: contact.Account, MatchedBy: models.AccountMatchContactEmail}
	}

	partial := &models.Resolution{
		Contact:       contact,
		MatchedBy:     models.AccountMatchContactEmail,
		Failure:       models.ResolutionFailureAccountLookupOnlyPartial,
		FailureDetail: fmt.Sprintf("contact %s has no readable account", contact.ID),
	}
	if contact.AccountID == "" {
		log.Printf("⚠️ Contact %s has no account", contact.ID)
		return partial
	}

	account, err := s.getAccount(ctx, contact.AccountID)
	if core.IsNotFoundError(err) {
		log.Printf("⚠️ Account %s of contact %s no longer exists", contact.AccountID, contact.ID)
		partial.FailureDetail = fmt.Sprintf("account %s of contact %s was deleted", contact.AccountID, contact.ID)
		return partial
	}
	if err != nil {
		log.Printf("❌ Failed to fetch account %s for contact %s: %v", contact.AccountID, contact.ID, err)
		partial.FailureDetail = fmt.Sprintf("couldn't read account %s of contact %s: %v", contact.AccountID, contact.ID, err)
		return partial
	}
	contact.Account = account
	return &models.Resolution{Contact: contact, Account: account, MatchedBy: models.AccountMatchContactEmail}
}

// findAccount tries the email domain first, then the company name
func (s *ResolverService) findAccount(
	ctx context.Context,
	email string,
	companyName mo.Option[string],
) (mo.Option[*models.Account], models.AccountMatch, error) {
	var lookups []sq.Sqlizer
	if domain := emailDomain(email); domain != "" {
		lookups = append(lookups, sq.Like{"Website": salesforce.Contains(domain)})
		if s.accountDomainField != "" {
			lookups = append(lookups, sq.Eq{s.accountDomainField: domain})
		}
	}
	for _, where := range lookups {
		maybeAccount, err := s.queryFirstAccount(ctx, where)
		if err != nil || maybeAccount.IsPresent() {
			return maybeAccount, models.AccountMatchDomain, err
		}
	}

	name := strings.TrimSpace(companyName.OrEmpty())
	if name == "" {
		return mo.None[*models.Account](), "", nil
	}
	for _, where := range []sq.Sqlizer{sq.Eq{"Name": name}, sq.Like{"Name": salesforce.Contains(name)}} {
		maybeAccount, err := s.queryFirstAccount(ctx, where)
		if err != nil || maybeAccount.IsPresent() {
			return maybeAccount, models.AccountMatchName, err
		}
	}
	return mo.None[*models.Account](), "", nil
}

func (s *ResolverService) findContactOnAccount(
	ctx context.Context,
	accountID, email string,
) (mo.Option[*models.Contact], error) {
	maybeContact, err := s.queryFirstContact(ctx, salesforce.Select(salesforce.ContactFields...).
		From(salesforce.ObjectContact).
		Where(sq.And{sq.Eq{"AccountId": accountID}, sq.Eq{"Email": email}}).
		Limit(1))
	if err != nil || maybeContact.IsPresent() {
		return maybeContact, err
	}

	contacts, err := s.queryContacts(ctx, salesforce.Select(salesforce.ContactFields...).
		From(salesforce.ObjectContact).
		Where(sq.Eq{"AccountId": accountID}).
		Limit(s.contactScanLimit))
	if err != nil {
		return mo.None[*models.Contact](), err
	}
	for _, contact := range contacts {
		if normalizeEmail(contact.Email) == email {
			return mo.Some(contact), nil
		}
	}
	return mo.None[*models.Contact](), nil
}

func (s *ResolverService) createContact(
	ctx context.Context,
	account *models.Account,
	name models.PersonName,
	email string,
) (*models.Contact, error) {
	result, err := s.crm.Create(ctx, salesforce.ObjectContact, map[string]any{
		"FirstName": name.FirstName,
		"LastName":  name.LastName,
		"Email":     email,
		"AccountId": account.ID,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success || result.ID == "" {
		return nil, fmt.Errorf("contact creation rejected: %s", strings.Join(result.Errors, "; "))
	}

	contact := &models.Contact{
		ID:        result.ID,
		Name:      name.String(),
		FirstName: name.FirstName,
		LastName:  name.LastName,
		Email:     email,
		AccountID: account.ID,
	}
	if fetched, err := s.getContact(ctx, result.ID); err != nil {
		log.Printf("⚠️ Failed to re-fetch created contact %s, using submitted fields: %v", result.ID, err)
	} else {
		contact = fetched
	}
	contact.Account = account
	return contact, nil
}

func (s *ResolverService) getContact(ctx context.Context, id string) (*models.Contact, error) {
	raw, err := s.crm.Get(ctx, salesforce.ObjectContact, id, salesforce.ContactFields)
	if err != nil {
		return nil, err
	}
	var record salesforce.ContactRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode contact %s: %w", id, err)
	}
	return record.ToModel(), nil
}

func (s *ResolverService) getAccount(ctx context.Context, id string) (*models.Account, error) {
	raw, err := s.crm.Get(ctx, salesforce.ObjectAccount, id, salesforce.AccountFields)
	if err != nil {
		return nil, err
	}
	var record salesforce.AccountRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", id, err)
	}
	return record.ToModel(), nil
}

func (s *ResolverService) queryFirstAccount(ctx context.Context, where sq.Sqlizer) (mo.Option[*models.Account], error) {
	statement, err := salesforce.Build(salesforce.Select(salesforce.AccountFields...).
		From(salesforce.ObjectAccount).
		Where(where).
		Limit(1))
	if err != nil {
		return mo.None[*models.Account](), err
	}
	result, err := s.crm.Query(ctx, statement)
	if err != nil {
		return mo.None[*models.Account](), err
	}
	records, err := clients.DecodeRecords[salesforce.AccountRecord](result.Records)
	if err != nil || len(records) == 0 {
		return mo.None[*models.Account](), err
	}
	return mo.Some(records[0].ToModel()), nil
}

func (s *ResolverService) queryFirstContact(ctx context.Context, statement sq.Sqlizer) (mo.Option[*models.Contact], error) {
	contacts, err := s.queryContacts(ctx, statement)
	if err != nil || len(contacts) == 0 {
		return mo.None[*models.Contact](), err
	}
	return mo.Some(contacts[0]), nil
}

func (s *ResolverService) queryContacts(ctx context.Context, statement sq.Sqlizer) ([]*models.Contact, error) {
	soql, err := salesforce.Build(statement)
	if err != nil {
		return nil, err
	}
	result, err := s.crm.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	records, err := clients.DecodeRecords[salesforce.ContactRecord](result.Records)
	if err != nil {
		return nil, err
	}
	contacts := make([]*models.Contact, 0, len(records))
	for _, record := range records {
		contacts = append(contacts, record.ToModel())
	}
	return contacts, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
