package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountGroupRequest defines the data needed to create an account group.
// Nature may be omitted for a child group, which then inherits its parent's.
type CreateAccountGroupRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	ParentID           *int64 `json:"parentID,omitempty"`
	Nature             string `json:"nature" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	AffectsGrossProfit bool   `json:"affectsGrossProfit"`
	Sequence           int    `json:"sequence"`
}

// UpdateAccountGroupRequest carries the fields to change on a group.
// Set MoveToRoot to detach a group from its parent.
type UpdateAccountGroupRequest struct {
	Name               *string `json:"name,omitempty" binding:"omitempty,max=255"`
	ParentID           *int64  `json:"parentID,omitempty"`
	MoveToRoot         bool    `json:"moveToRoot"`
	Nature             *string `json:"nature,omitempty" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	AffectsGrossProfit *bool   `json:"affectsGrossProfit,omitempty"`
	Sequence           *int    `json:"sequence,omitempty"`
}

// AccountGroupResponse defines the data returned for an account group.
type AccountGroupResponse struct {
	ID                 int64     `json:"id"`
	ParentID           *int64    `json:"parentID,omitempty"`
	Name               string    `json:"name"`
	Nature             string    `json:"nature"`
	AffectsGrossProfit bool      `json:"affectsGrossProfit"`
	Sequence           int       `json:"sequence"`
	IsSystem           bool      `json:"isSystem"`
	SystemKey          string    `json:"systemKey,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	LastUpdatedAt      time.Time `json:"lastUpdatedAt"`
}

// GroupTreeNode is a group with its children nested below it.
type GroupTreeNode struct {
	AccountGroupResponse
	Children []GroupTreeNode `json:"children"`
}

// ToAccountGroupResponse converts a domain.AccountGroup to its DTO.
func ToAccountGroupResponse(g *domain.AccountGroup) AccountGroupResponse {
	return AccountGroupResponse{
		ID:                 g.ID,
		ParentID:           g.ParentID,
		Name:               g.Name,
		Nature:             string(g.Nature),
		AffectsGrossProfit: g.AffectsGrossProfit,
		Sequence:           g.Sequence,
		IsSystem:           g.IsSystem,
		SystemKey:          g.SystemKey,
		CreatedAt:          g.CreatedAt,
		LastUpdatedAt:      g.LastUpdatedAt,
	}
}

// ToGroupTreeResponse nests the groups of tree under their parents.
func ToGroupTreeResponse(tree *domain.GroupTree) []GroupTreeNode {
	var build func(groups []domain.AccountGroup) []GroupTreeNode
	build = func(groups []domain.AccountGroup) []GroupTreeNode {
		nodes := make([]GroupTreeNode, 0, len(groups))
		for i := range groups {
			nodes = append(nodes, GroupTreeNode{
				AccountGroupResponse: ToAccountGroupResponse(&groups[i]),
				Children:             build(tree.Children(groups[i].ID)),
			})
		}
		return nodes
	}
	return build(tree.Roots())
}

// CreateLedgerAccountRequest defines the data needed to create a ledger account.
type CreateLedgerAccountRequest struct {
	GroupID        int64           `json:"groupID" binding:"required"`
	Name           string          `json:"name" binding:"required,max=255"`
	Code           string          `json:"code" binding:"omitempty,max=50"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	IsBankAccount  bool            `json:"isBankAccount"`
	IsCashAccount  bool            `json:"isCashAccount"`
}

// UpdateLedgerAccountRequest carries the fields to change on a ledger account.
type UpdateLedgerAccountRequest struct {
	GroupID        *int64           `json:"groupID,omitempty"`
	Name           *string          `json:"name,omitempty" binding:"omitempty,max=255"`
	Code           *string          `json:"code,omitempty" binding:"omitempty,max=50"`
	OpeningBalance *decimal.Decimal `json:"openingBalance,omitempty"`
	IsBankAccount  *bool            `json:"isBankAccount,omitempty"`
	IsCashAccount  *bool            `json:"isCashAccount,omitempty"`
	IsActive       *bool            `json:"isActive,omitempty"`
}

// LedgerAccountResponse defines the data returned for a ledger account.
type LedgerAccountResponse struct {
	ID             int64           `json:"id"`
	GroupID        int64           `json:"groupID"`
	Name           string          `json:"name"`
	Code           string          `json:"code,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsBankAccount  bool            `json:"isBankAccount"`
	IsCashAccount  bool            `json:"isCashAccount"`
	IsActive       bool            `json:"isActive"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// ToLedgerAccountResponse converts a domain.LedgerAccount to its DTO.
func ToLedgerAccountResponse(l *domain.LedgerAccount) LedgerAccountResponse {
	return LedgerAccountResponse{
		ID:             l.ID,
		GroupID:        l.GroupID,
		Name:           l.Name,
		Code:           l.Code,
		OpeningBalance: l.OpeningBalance,
		CurrentBalance: l.CurrentBalance,
		IsBankAccount:  l.IsBankAccount,
		IsCashAccount:  l.IsCashAccount,
		IsActive:       l.IsActive,
		DeletedAt:      l.DeletedAt,
		CreatedAt:      l.CreatedAt,
		CreatedBy:      l.CreatedBy,
		LastUpdatedAt:  l.LastUpdatedAt,
		LastUpdatedBy:  l.LastUpdatedBy,
	}
}

// ToListLedgerAccountResponse converts ledger accounts to DTOs.
func ToListLedgerAccountResponse(ledgers []domain.LedgerAccount) []LedgerAccountResponse {
	res := make([]LedgerAccountResponse, len(ledgers))
	for i := range ledgers {
		res[i] = ToLedgerAccountResponse(&ledgers[i])
	}
	return res
}

// AccountBalanceResponse is a ledger account's balance as of a date.
type AccountBalanceResponse struct {
	LedgerAccountID int64           `json:"ledgerAccountID"`
	AsOf            Date            `json:"asOf"`
	Balance         decimal.Decimal `json:"balance"`
}
