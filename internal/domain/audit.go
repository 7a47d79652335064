package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is the trail of explicit, human-triggered corrections and bulk
// operations. Balance fixes are never silent: every overwrite of a cached
// balance lands here with the before/after state.
type AuditLog struct {
	ID           string
	OwnerID      string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	BeforeState  json.RawMessage
	AfterState   json.RawMessage
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionBalanceFix        AuditAction = "balance.fix"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"
	AuditActionCSVImport         AuditAction = "csv.import"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState serializes an object for the before/after audit columns.
func MarshalState(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	OwnerID      string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
}
