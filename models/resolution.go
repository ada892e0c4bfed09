package models

// ResolutionFailure is the reason a notification could not be resolved to a contact and account
type ResolutionFailure string

const (
	ResolutionFailureNoContactNoAccount       ResolutionFailure = "no-contact-no-account"
	ResolutionFailureNoContactAmbiguousName   ResolutionFailure = "no-contact-ambiguous-name"
	ResolutionFailureContactCreationFailed    ResolutionFailure = "contact-creation-failed"
	ResolutionFailureAccountLookupOnlyPartial ResolutionFailure = "account-lookup-only-partial"
)

// AccountMatch records which strategy located the account
type AccountMatch string

const (
	AccountMatchContactEmail AccountMatch = "contact-email"
	AccountMatchDomain       AccountMatch = "domain"
	AccountMatchName         AccountMatch = "name"
)

// Resolution is either a resolved (contact, account) pair or a failure reason
type Resolution struct {
	Contact        *Contact
	Account        *Account
	ContactCreated bool
	MatchedBy      AccountMatch
	Failure        ResolutionFailure
	FailureDetail  string
}

// IsResolved reports whether both a contact and an account were found
func (r *Resolution) IsResolved() bool {
	return r != nil && r.Failure == "" && r.Contact != nil && r.Account != nil
}

func NewResolutionFailure(reason ResolutionFailure, detail string) *Resolution {
	return &Resolution{Failure: reason, FailureDetail: detail}
}
