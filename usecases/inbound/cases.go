package inbound

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/mo"

	"inboundbot/clients"
	"inboundbot/clients/salesforce"
	"inboundbot/models"
	"inboundbot/utils"
)

const (
	opportunityCloseDays    = 30
	opportunityNameSuffix   = " - Inbound"
	opportunityStage        = "Qualification"
	opportunityType         = "New Business"
	opportunityLeadSource   = "Partner Referral"
	opportunityDeployment   = "Cloud"
	opportunitySalesChannel = "Reseller"
	closeDateLayout         = "2006-01-02"

	activeSubscriptionStatus = "Active"
)

var baselineOpportunityFields = []string{"Name", "AccountId", "CloseDate", "StageName", "Type", "LeadSource"}

// HandleResolution turns a resolution into reply text and a status. A prospect account gets
// a new opportunity; any other classification gets an informational notice.
func (s *InboundUseCase) HandleResolution(
	ctx context.Context,
	msg models.NotificationMessage,
	fields models.ExtractedFields,
	resolution *models.Resolution,
) models.CaseOutcome {
	if !resolution.IsResolved() {
		log.Printf("⚠️ Notification %s could not be resolved: %s", msg.TS, resolution.Failure)
		return s.resolutionFailureOutcome(fields, resolution)
	}

	if resolution.Account.IsProspect() {
		log.Printf("🎯 Account %s is a prospect, creating opportunity", resolution.Account.ID)
		return s.handleProspect(ctx, resolution)
	}

	log.Printf("ℹ️ Account %s is classified %q, no opportunity will be created", resolution.Account.ID, resolution.Account.Classification)
	return s.handleExistingAccount(ctx, resolution)
}

func (s *InboundUseCase) handleProspect(ctx context.Context, resolution *models.Resolution) models.CaseOutcome {
	account := resolution.Account
	contact := resolution.Contact
	closeDate := s.now().AddDate(0, 0, opportunityCloseDays)
	fields := s.opportunityFields(account, contact, closeDate)

	id, err := s.createOpportunity(ctx, fields)
	var omitted []string
	if err != nil && salesforce.IsInvalidField(err) {
		log.Printf("⚠️ Opportunity creation rejected a field, retrying with baseline fields: %v", err)
		baseline := make(map[string]any, len(baselineOpportunityFields))
		for name, value := range fields {
			if slices.Contains(baselineOpportunityFields, name) {
				baseline[name] = value
			} else {
				omitted = append(omitted, name)
			}
		}
		slices.Sort(omitted)
		id, err = s.createOpportunity(ctx, baseline)
	}
	if err != nil {
		log.Printf("❌ Failed to create opportunity for account %s: %v", account.ID, err)
		lines := []string{
			fmt.Sprintf(":x: Couldn't create an opportunity for prospect account %s: %v", s.recordLink(salesforce.ObjectAccount, account.ID, account.Name), err),
			s.contactLine(resolution),
			s.reviewerLine("Please create the opportunity manually."),
		}
		return models.CaseOutcome{Status: models.CaseStatusError, Reply: joinLines(lines)}
	}

	opportunity := &models.Opportunity{
		ID:        id,
		Name:      fields["Name"].(string),
		AccountID: account.ID,
		ContactID: contact.ID,
		CloseDate: closeDate,
	}
	log.Printf("✅ Created opportunity %s for account %s", opportunity.ID, account.ID)

	lines := []string{
		fmt.Sprintf(":tada: Created opportunity %s for prospect account %s.",
			s.recordLink(salesforce.ObjectOpportunity, opportunity.ID, opportunity.Name),
			s.recordLink(salesforce.ObjectAccount, account.ID, account.Name)),
		s.contactLine(resolution),
		"• Close date: " + closeDate.Format(closeDateLayout),
	}
	if len(omitted) > 0 {
		lines = append(lines, fmt.Sprintf(":warning: These fields aren't available and must be set manually: %s", strings.Join(omitted, ", ")))
	}
	if s.config.ReviewerUserID != "" {
		lines = append(lines, s.reviewerLine("Please review."))
	}

	return models.CaseOutcome{Status: models.CaseStatusSuccess, Reply: joinLines(lines), Opportunity: opportunity}
}

func (s *InboundUseCase) opportunityFields(account *models.Account, contact *models.Contact, closeDate time.Time) map[string]any {
	fields := map[string]any{
		"Name":               account.Name + opportunityNameSuffix,
		"AccountId":          account.ID,
		"CloseDate":          closeDate.Format(closeDateLayout),
		"StageName":          opportunityStage,
		"Type":               opportunityType,
		"LeadSource":         opportunityLeadSource,
		"Primary_Contact__c": contact.ID,
		"Deployment_Type__c": opportunityDeployment,
		"Sales_Channel__c":   opportunitySalesChannel,
	}
	if billingAccountID, ok := s.crm.BillingAccountID().Get(); ok {
		fields["Billing_Account__c"] = billingAccountID
	}
	return fields
}

func (s *InboundUseCase) createOpportunity(ctx context.Context, fields map[string]any) (string, error) {
	result, err := s.crm.Create(ctx, salesforce.ObjectOpportunity, fields)
	if err != nil {
		return "", err
	}
	if !result.Success || result.ID == "" {
		return "", fmt.Errorf("opportunity creation rejected: %s", strings.Join(result.Errors, "; "))
	}
	return result.ID, nil
}

func (s *InboundUseCase) handleExistingAccount(ctx context.Context, resolution *models.Resolution) models.CaseOutcome {
	account := resolution.Account
	classification := account.Classification
	if classification == "" {
		classification = "unclassified"
	}

	lines := []string{
		fmt.Sprintf(":information_source: %s is a %s account, so no opportunity was created.",
			s.recordLink(salesforce.ObjectAccount, account.ID, account.Name), classification),
		s.contactLine(resolution),
	}

	maybeSubscription := s.findActiveSubscription(ctx, account.ID)
	if maybeSubscription.IsPresent() {
		subscription := maybeSubscription.MustGet()
		details := []string{"status " + subscription.Status}
		if !subscription.Amount.IsZero() {
			details = append(details, "ARR "+subscription.Amount.StringFixed(2))
		}
		if subscription.EndDate != "" {
			details = append(details, "ends "+subscription.EndDate)
		}
		lines = append(lines,
			fmt.Sprintf("• Existing subscription: %s (%s)",
				s.recordLink(salesforce.ObjectSubscription, subscription.ID, subscription.Name), strings.Join(details, ", ")),
			s.reviewerLine("Handle this signup as a renewal or upsell on the existing subscription."))
	} else {
		lines = append(lines,
			":warning: No active reseller subscription was found for this account.",
			s.reviewerLine("Please check how this signup should be handled."))
	}

	return models.CaseOutcome{Status: models.CaseStatusInformational, Reply: joinLines(lines)}
}

// findActiveSubscription probes for an active subscription on the account. Probe failures count as absent.
func (s *InboundUseCase) findActiveSubscription(ctx context.Context, accountID string) mo.Option[*models.Subscription] {
	where := sq.And{sq.Eq{"Account__c": accountID}, sq.Eq{"Status__c": activeSubscriptionStatus}}
	if billingAccountID, ok := s.crm.BillingAccountID().Get(); ok {
		where = append(where, sq.Eq{"Billing_Account__c": billingAccountID})
	}

	statement, err := salesforce.Build(salesforce.Select(salesforce.SubscriptionFields...).
		From(salesforce.ObjectSubscription).
		Where(where).
		OrderBy("End_Date__c DESC").
		Limit(1))
	if err != nil {
		log.Printf("❌ Failed to build subscription query: %v", err)
		return mo.None[*models.Subscription]()
	}

	result, err := s.crm.Query(ctx, statement)
	if err != nil {
		log.Printf("⚠️ Failed to look up subscription for account %s: %v", accountID, err)
		return mo.None[*models.Subscription]()
	}
	records, err := clients.DecodeRecords[salesforce.SubscriptionRecord](result.Records)
	if err != nil || len(records) == 0 {
		return mo.None[*models.Subscription]()
	}
	return mo.Some(records[0].ToModel())
}

func (s *InboundUseCase) resolutionFailureOutcome(fields models.ExtractedFields, resolution *models.Resolution) models.CaseOutcome {
	var summary string
	switch resolution.Failure {
	case models.ResolutionFailureNoContactNoAccount:
		summary = "No contact or account in Salesforce matches this signup."
	case models.ResolutionFailureNoContactAmbiguousName:
		summary = fmt.Sprintf("Found account %s but couldn't read the admin's first and last name, so no contact was created.",
			s.accountLink(resolution.Account))
	case models.ResolutionFailureContactCreationFailed:
		summary = fmt.Sprintf("Found account %s but creating the contact failed.", s.accountLink(resolution.Account))
	case models.ResolutionFailureAccountLookupOnlyPartial:
		summary = "Found a matching contact but couldn't read its account."
		if resolution.Contact != nil {
			summary = fmt.Sprintf("Found contact %s but couldn't read its account.",
				s.recordLink(salesforce.ObjectContact, resolution.Contact.ID, resolution.Contact.Name))
		}
	default:
		summary = "The customer couldn't be resolved."
	}

	lines := []string{
		fmt.Sprintf(":warning: %s (reason: `%s`)", summary, resolution.Failure),
		"• Email: " + fields.Email.OrElse("not found"),
		"• Company: " + fields.CompanyName.OrElse("not found"),
	}
	if resolution.FailureDetail != "" {
		lines = append(lines, "• Details: "+resolution.FailureDetail)
	}
	lines = append(lines, s.reviewerLine("Please handle this signup manually."))

	return models.CaseOutcome{Status: models.CaseStatusNeedsAttention, Reply: joinLines(lines)}
}

func (s *InboundUseCase) extractionFailureOutcome(fields models.ExtractedFields) models.CaseOutcome {
	lines := []string{
		":warning: I couldn't find the customer admin email in this notification.",
		"• Company: " + fields.CompanyName.OrElse("not found"),
		s.reviewerLine("Please handle this signup manually."),
	}
	return models.CaseOutcome{Status: models.CaseStatusNeedsAttention, Reply: joinLines(lines)}
}

func (s *InboundUseCase) unexpectedFailureOutcome(err error) models.CaseOutcome {
	lines := []string{
		fmt.Sprintf(":x: Something went wrong while processing this signup: %v", err),
		s.reviewerLine("Please handle this signup manually."),
	}
	return models.CaseOutcome{Status: models.CaseStatusError, Reply: joinLines(lines)}
}

func (s *InboundUseCase) contactLine(resolution *models.Resolution) string {
	contact := resolution.Contact
	line := fmt.Sprintf("• Contact: %s (%s)", s.recordLink(salesforce.ObjectContact, contact.ID, contact.Name), contact.Email)
	if resolution.ContactCreated {
		line += " (new contact)"
	}
	return line
}

func (s *InboundUseCase) accountLink(account *models.Account) string {
	if account == nil {
		return "(unknown)"
	}
	return s.recordLink(salesforce.ObjectAccount, account.ID, account.Name)
}

// recordLink links a record in the Salesforce UI; without a base URL it renders the bare label
func (s *InboundUseCase) recordLink(object, id, label string) string {
	if label == "" {
		label = id
	}
	baseURL := s.config.RecordBaseURL
	if baseURL == "" {
		baseURL = s.crm.InstanceURL()
	}
	if baseURL == "" {
		return label
	}
	return utils.SlackLink(fmt.Sprintf("%s/lightning/r/%s/%s/view", strings.TrimRight(baseURL, "/"), object, id), label)
}

// reviewerLine prefixes text with a mention of the reviewer when one is configured
func (s *InboundUseCase) reviewerLine(text string) string {
	if mention := utils.SlackMention(s.config.ReviewerUserID); mention != "" {
		return mention + " " + text
	}
	return text
}

func joinLines(lines []string) string {
	trimmed := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed = append(trimmed, strings.TrimRight(line, " "))
	}
	return strings.Join(trimmed, "\n")
}
