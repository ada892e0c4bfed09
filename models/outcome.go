package models

// CaseStatus is the terminal status shown on the originating message
type CaseStatus string

const (
	CaseStatusProcessing     CaseStatus = "processing"
	CaseStatusSuccess        CaseStatus = "success"
	CaseStatusInformational  CaseStatus = "informational"
	CaseStatusNeedsAttention CaseStatus = "needs-attention"
	CaseStatusError          CaseStatus = "error"
)

// CaseOutcome is the rendered result of handling one notification
type CaseOutcome struct {
	Status      CaseStatus
	Reply       string
	Opportunity *Opportunity
}
