package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/google/uuid"
)

// EntityKind identifies the kind of record an audit entry is about.
type EntityKind uint8

const (
	EntityUnknown EntityKind = iota
	EntityCurrency
	EntityAccountGroup
	EntityLedgerAccount
	EntityFinancialYear
	EntityVoucherType
	EntityVoucher
	EntityFinancialRatio
	EntityBusinessSettings
)

func (k EntityKind) String() string {
	switch k {
	case EntityCurrency:
		return "currency"
	case EntityAccountGroup:
		return "account_group"
	case EntityLedgerAccount:
		return "ledger_account"
	case EntityFinancialYear:
		return "financial_year"
	case EntityVoucherType:
		return "voucher_type"
	case EntityVoucher:
		return "voucher"
	case EntityFinancialRatio:
		return "financial_ratio"
	case EntityBusinessSettings:
		return "business_settings"
	default:
		return "unknown"
	}
}

// ParseEntityKind is the inverse of EntityKind.String.
func ParseEntityKind(s string) (EntityKind, error) {
	for k := EntityCurrency; k <= EntityBusinessSettings; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return EntityUnknown, fmt.Errorf("%w: unknown subject type %q", apperrors.ErrValidation, s)
}

func (k EntityKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EntityKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEntityKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AuditAction is the kind of mutation recorded.
type AuditAction string

const (
	ActionCreate  AuditAction = "create"
	ActionUpdate  AuditAction = "update"
	ActionDelete  AuditAction = "delete"
	ActionRestore AuditAction = "restore"
)

// Valid reports whether a is a known action.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRestore:
		return true
	}
	return false
}

// EntityRef points at one auditable record. Currency ids are codes, all
// other ids are decimal renderings of their numeric key.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// RefOf builds an EntityRef from a numeric id.
func RefOf(kind EntityKind, id int64) EntityRef {
	return EntityRef{Kind: kind, ID: fmt.Sprintf("%d", id)}
}

// AuditEvent is what a service hands to the recorder after a committed
// mutation. Before and After are the record states and may be nil.
type AuditEvent struct {
	BusinessID *int64
	Action     AuditAction
	Subject    EntityRef
	Before     any
	After      any
	CauserID   string
}

// AuditLogEntry is one immutable row of the audit log.
type AuditLogEntry struct {
	ID         int64           `json:"id"`
	EventID    uuid.UUID       `json:"eventID"`
	BusinessID *int64          `json:"businessID,omitempty"`
	Action     AuditAction     `json:"event"`
	Subject    EntityRef       `json:"subject"`
	OldValues  json.RawMessage `json:"oldValues,omitempty"`
	NewValues  json.RawMessage `json:"newValues,omitempty"`
	CauserID   string          `json:"causerID"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewAuditLogEntry turns an event into a log entry. For updates only the
// fields that changed are kept on either side.
func NewAuditLogEntry(ev AuditEvent, now time.Time) (AuditLogEntry, error) {
	entry := AuditLogEntry{
		EventID:    uuid.New(),
		BusinessID: ev.BusinessID,
		Action:     ev.Action,
		Subject:    ev.Subject,
		CauserID:   ev.CauserID,
		CreatedAt:  now,
	}
	before, err := toFields(ev.Before)
	if err != nil {
		return entry, fmt.Errorf("encoding old values: %w", err)
	}
	after, err := toFields(ev.After)
	if err != nil {
		return entry, fmt.Errorf("encoding new values: %w", err)
	}
	if ev.Action == ActionUpdate && before != nil && after != nil {
		before, after = changedFields(before, after)
	}
	if entry.OldValues, err = marshalFields(before); err != nil {
		return entry, err
	}
	if entry.NewValues, err = marshalFields(after); err != nil {
		return entry, err
	}
	return entry, nil
}

func toFields(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// changedFields drops keys whose values are identical on both sides.
// Bookkeeping timestamps are ignored.
func changedFields(before, after map[string]any) (map[string]any, map[string]any) {
	oldOut, newOut := map[string]any{}, map[string]any{}
	for k, nv := range after {
		if k == "lastUpdatedAt" || k == "lastUpdatedBy" {
			continue
		}
		ov, ok := before[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			oldOut[k] = ov
			newOut[k] = nv
		}
	}
	for k, ov := range before {
		if _, ok := after[k]; !ok {
			oldOut[k] = ov
		}
	}
	return oldOut, newOut
}

func marshalFields(fields map[string]any) (json.RawMessage, error) {
	if fields == nil {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding audit fields: %w", err)
	}
	return raw, nil
}

// AuditLogFilter narrows an audit log query. Zero values mean no filter.
type AuditLogFilter struct {
	BusinessID  *int64
	CauserID    string
	SubjectKind EntityKind
	SubjectID   string
	Action      AuditAction
	From        *time.Time
	To          *time.Time
}
