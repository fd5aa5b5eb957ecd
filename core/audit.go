package core

import "time"

const (
	PropertyAuditReport = "auditor_report"
	PropertyAuditCursor = "auditor_cursor"
)

// AuditViolation is a vault found breaking its custody rules.
type AuditViolation struct {
	State  string `json:"state"`
	Vault  string `json:"vault"`
	Reason string `json:"reason"`
}

// AuditReport summarizes the last full pass over every vault state.
type AuditReport struct {
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	States         int               `json:"states"`
	LockedLamports uint64            `json:"locked_lamports"`
	Violations     []*AuditViolation `json:"violations,omitempty"`
}
