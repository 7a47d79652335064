package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Kind              string          `json:"kind"`
	Currency          string          `json:"currency"`
	Balance           decimal.Decimal `json:"balance"`
	Active            bool            `json:"active"`
	LastTransactionID *string         `json:"last_transaction_id,omitempty"`
	BalanceUpdatedAt  time.Time       `json:"balance_updated_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		Name:              a.Name,
		Kind:              string(a.Kind),
		Currency:          a.Currency,
		Balance:           a.Balance,
		Active:            a.Active,
		LastTransactionID: a.LastTransactionID,
		BalanceUpdatedAt:  a.BalanceUpdatedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// CreditCardResponse represents a credit card in API responses.
type CreditCardResponse struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"account_id"`
	Name              string          `json:"name"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	AvailableCredit   decimal.Decimal `json:"available_credit"`
	LastTransactionID *string         `json:"last_transaction_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreditCardFromDomain converts domain credit card to response.
func CreditCardFromDomain(c *domain.CreditCard) *CreditCardResponse {
	return &CreditCardResponse{
		ID:                c.ID,
		AccountID:         c.AccountID,
		Name:              c.Name,
		CreditLimit:       c.CreditLimit,
		Outstanding:       c.Outstanding,
		AvailableCredit:   c.AvailableCredit(),
		LastTransactionID: c.LastTransactionID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// CreditCardsFromDomain converts domain credit cards to responses.
func CreditCardsFromDomain(cards []*domain.CreditCard) []*CreditCardResponse {
	result := make([]*CreditCardResponse, len(cards))
	for i, c := range cards {
		result[i] = CreditCardFromDomain(c)
	}
	return result
}

// ListCreditCardsResponse wraps a page of credit cards.
type ListCreditCardsResponse struct {
	CreditCards []*CreditCardResponse `json:"credit_cards"`
	Total       int64                 `json:"total"`
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	Amount               decimal.Decimal `json:"amount"`
	MovementType         string          `json:"movement_type"`
	AccountID            *string         `json:"account_id,omitempty"`
	CreditCardID         *string         `json:"credit_card_id,omitempty"`
	FromAccountID        *string         `json:"from_account_id,omitempty"`
	ToAccountID          *string         `json:"to_account_id,omitempty"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	IsPaid               bool            `json:"is_paid"`
	Date                 time.Time       `json:"date"`
	BalanceImpact        decimal.Decimal `json:"balance_impact"`
	RelatedTransactionID *string         `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		Amount:               t.Amount,
		MovementType:         string(t.MovementType),
		AccountID:            t.AccountID,
		CreditCardID:         t.CreditCardID,
		FromAccountID:        t.FromAccountID,
		ToAccountID:          t.ToAccountID,
		Description:          t.Description,
		Category:             t.Category,
		IsPaid:               t.IsPaid,
		Date:                 t.Date,
		BalanceImpact:        t.BalanceImpact,
		RelatedTransactionID: t.RelatedTransactionID,
		CreatedAt:            t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(entries []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// BulkTransactionsResponse reports per-row outcomes of a skip-errors run.
type BulkTransactionsResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Rows      []BulkRowResponse `json:"rows"`
}

// BulkRowResponse is one row's outcome in a bulk run.
type BulkRowResponse struct {
	Index       int                  `json:"index"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// BulkFromResult converts a use case bulk result to a response.
func BulkFromResult(r *usecase.BulkResult) *BulkTransactionsResponse {
	resp := &BulkTransactionsResponse{
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Rows:      make([]BulkRowResponse, len(r.Rows)),
	}
	for i, row := range r.Rows {
		out := BulkRowResponse{Index: row.Index}
		if row.Transaction != nil {
			out.Transaction = TransactionFromDomain(row.Transaction)
		}
		if row.Err != nil {
			out.Error = row.Err.Error()
		}
		resp.Rows[i] = out
	}
	return resp
}

// TransferResponse represents the two linked legs of a transfer pair.
type TransferResponse struct {
	FromEntry *TransactionResponse `json:"from_entry"`
	ToEntry   *TransactionResponse `json:"to_entry"`
}

// TransferFromResult converts a use case transfer result to a response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		FromEntry: TransactionFromDomain(r.FromEntry),
		ToEntry:   TransactionFromDomain(r.ToEntry),
	}
}

// BalancePointResponse represents one day in a balance timeline.
type BalancePointResponse struct {
	Day             string          `json:"day"`
	Balance         decimal.Decimal `json:"balance"`
	HasTransactions bool            `json:"has_transactions"`
}

// TimelineResponse represents a daily balance series.
type TimelineResponse struct {
	AccountID string                 `json:"account_id"`
	Status    string                 `json:"status"`
	Points    []BalancePointResponse `json:"points"`
}

// TimelineFromResult converts a use case timeline result to a response.
func TimelineFromResult(accountID string, r *usecase.TimelineResult) *TimelineResponse {
	points := make([]BalancePointResponse, len(r.Points))
	for i, p := range r.Points {
		points[i] = BalancePointResponse{
			Day:             p.Day.Format("2006-01-02"),
			Balance:         p.Balance,
			HasTransactions: p.HasTransactions,
		}
	}
	return &TimelineResponse{
		AccountID: accountID,
		Status:    string(r.Status),
		Points:    points,
	}
}

// BalanceAtResponse represents a point-in-time balance.
type BalanceAtResponse struct {
	AccountID string          `json:"account_id"`
	AsOf      string          `json:"as_of"`
	Balance   decimal.Decimal `json:"balance"`
}

// RecomputeResponse reports the snapshot status after a forced
// recomputation.
type RecomputeResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	BeforeState  any       `json:"before_state,omitempty"`
	AfterState   any       `json:"after_state,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       string(l.Status),
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
