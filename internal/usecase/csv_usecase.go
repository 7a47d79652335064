package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// csvHeader is the portable column set. Rows reference accounts and cards
// by name, never by ID, so an export loads cleanly into a fresh install.
var csvHeader = []string{
	"transaction_date",
	"transaction_movement_type",
	"transaction_amount",
	"transaction_description",
	"transaction_category",
	"transaction_is_paid",
	"account_name",
	"account_kind",
	"account_currency",
	"credit_card_name",
	"credit_card_limit",
	"transfer_from_account_name",
	"transfer_to_account_name",
}

// CSVUseCase exports the owner's ledger to CSV and imports it back,
// append-only. Transfer pairs travel as a single row and are re-linked on
// import; card-payment pairs travel as two plain rows.
type CSVUseCase struct {
	accountRepo AccountRepository
	cardRepo    CreditCardRepository
	entryRepo   TransactionRepository
	entryUC     *TransactionUseCase
	transferUC  *TransferUseCase
	accountUC   *AccountUseCase
	cardUC      *CreditCardUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewCSVUseCase creates a new CSVUseCase.
func NewCSVUseCase(
	accountRepo AccountRepository,
	cardRepo CreditCardRepository,
	entryRepo TransactionRepository,
	entryUC *TransactionUseCase,
	transferUC *TransferUseCase,
	accountUC *AccountUseCase,
	cardUC *CreditCardUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *CSVUseCase {
	return &CSVUseCase{
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		entryRepo:   entryRepo,
		entryUC:     entryUC,
		transferUC:  transferUC,
		accountUC:   accountUC,
		cardUC:      cardUC,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// Export streams the owner's full ledger to w as CSV, ordered as the
// repository returns it. Transfer pairs are collapsed to their debit leg.
func (uc *CSVUseCase) Export(ctx context.Context, ownerID string, w io.Writer) (int, error) {
	accounts, err := uc.allAccounts(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	cards, err := uc.allCards(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	accountsByID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID] = a
	}
	cardsByID := make(map[string]*domain.CreditCard, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	rows := 0
	offset := 0
	for {
		entries, err := uc.entryRepo.ListByOwner(ctx, ownerID, MaxListLimit, offset)
		if err != nil {
			return rows, err
		}

		for _, entry := range entries {
			// The credit leg of a transfer is implied by the debit leg's
			// row; writing both would double the pair on re-import.
			if entry.MovementType == domain.MovementTransfer && !entry.BalanceImpact.IsNegative() {
				continue
			}

			record, err := uc.exportRow(entry, accountsByID, cardsByID)
			if err != nil {
				return rows, err
			}

			if err := cw.Write(record); err != nil {
				return rows, err
			}
			rows++
		}

		if len(entries) < MaxListLimit {
			break
		}
		offset += MaxListLimit
	}

	cw.Flush()
	return rows, cw.Error()
}

func (uc *CSVUseCase) exportRow(
	entry *domain.Transaction,
	accounts map[string]*domain.Account,
	cards map[string]*domain.CreditCard,
) ([]string, error) {
	record := make([]string, len(csvHeader))
	record[0] = entry.Date.Format("2006-01-02")
	record[1] = string(entry.MovementType)
	record[2] = entry.Amount.String()
	record[3] = entry.Description
	record[4] = entry.Category
	record[5] = strconv.FormatBool(entry.IsPaid)

	if entry.MovementType == domain.MovementTransfer {
		from, ok := accounts[deref(entry.FromAccountID)]
		if !ok {
			return nil, fmt.Errorf("transfer %s: unknown source account", entry.ID)
		}
		to, ok := accounts[deref(entry.ToAccountID)]
		if !ok {
			return nil, fmt.Errorf("transfer %s: unknown destination account", entry.ID)
		}
		record[11] = from.Name
		record[12] = to.Name
		return record, nil
	}

	if entry.AccountID != nil {
		account, ok := accounts[*entry.AccountID]
		if !ok {
			return nil, fmt.Errorf("entry %s: unknown account", entry.ID)
		}
		record[6] = account.Name
		record[7] = string(account.Kind)
		record[8] = account.Currency
		return record, nil
	}

	card, ok := cards[deref(entry.CreditCardID)]
	if !ok {
		return nil, fmt.Errorf("entry %s: unknown credit card", entry.ID)
	}
	record[9] = card.Name
	record[10] = card.CreditLimit.String()
	return record, nil
}

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError identifies a rejected row by its 1-based line number.
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Import reads CSV rows from r and appends them to the owner's ledger.
// Accounts and cards are resolved by name and created when missing. Rows
// whose natural key already exists are skipped, which makes re-importing
// the same file idempotent. With skipErrors, bad rows are reported in the
// summary instead of aborting; otherwise the first bad row stops the run.
// Rows already applied before a mid-run failure stay applied.
func (uc *CSVUseCase) Import(ctx context.Context, ownerID string, r io.Reader, skipErrors bool) (*ImportSummary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("csv header mismatch at column %d: got %q, want %q", i+1, header[i], col)
		}
	}

	summary := &ImportSummary{}
	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if skipErrors {
				summary.Failed++
				summary.Errors = append(summary.Errors, ImportRowError{Line: line, Message: err.Error()})
				continue
			}
			uc.auditImport(ctx, ownerID, summary, err)
			return summary, err
		}

		skipped, err := uc.importRow(ctx, ownerID, record)
		if err != nil {
			if skipErrors {
				summary.Failed++
				summary.Errors = append(summary.Errors, ImportRowError{Line: line, Message: err.Error()})
				continue
			}
			uc.auditImport(ctx, ownerID, summary, err)
			return summary, fmt.Errorf("line %d: %w", line, err)
		}

		if skipped {
			summary.Skipped++
		} else {
			summary.Imported++
		}
	}

	uc.auditImport(ctx, ownerID, summary, nil)
	return summary, nil
}

func (uc *CSVUseCase) importRow(ctx context.Context, ownerID string, record []string) (skipped bool, err error) {
	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return false, fmt.Errorf("bad date %q: %w", record[0], err)
	}

	amount, err := decimal.NewFromString(record[2])
	if err != nil {
		return false, fmt.Errorf("bad amount %q: %w", record[2], err)
	}

	movement := domain.MovementType(record[1])
	if !movement.Valid() {
		return false, fmt.Errorf("%w: movement type %q", domain.ErrInvalidTransactionShape, record[1])
	}

	description := record[3]

	exists, err := uc.entryRepo.Exists(ctx, TransactionKey{
		OwnerID:      ownerID,
		Date:         domain.Day(date),
		Amount:       amount,
		MovementType: movement,
		Description:  description,
	})
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	if movement == domain.MovementTransfer {
		from, err := uc.resolveAccount(ctx, ownerID, record[11], "", "")
		if err != nil {
			return false, err
		}
		to, err := uc.resolveAccount(ctx, ownerID, record[12], "", "")
		if err != nil {
			return false, err
		}

		_, err = uc.transferUC.CreateTransfer(ctx, CreateTransferInput{
			OwnerID:       ownerID,
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        amount,
			Description:   description,
			Category:      record[4],
			Date:          date,
		})
		return false, err
	}

	isPaid, _ := strconv.ParseBool(record[5])

	input := CreateTransactionInput{
		OwnerID:      ownerID,
		Amount:       amount,
		MovementType: movement,
		Description:  description,
		Category:     record[4],
		Date:         date,
		IsPaid:       isPaid,
	}

	switch {
	case record[6] != "":
		account, err := uc.resolveAccount(ctx, ownerID, record[6], record[7], record[8])
		if err != nil {
			return false, err
		}
		input.AccountID = &account.ID

	case record[9] != "":
		card, err := uc.resolveCard(ctx, ownerID, record[9], record[10])
		if err != nil {
			return false, err
		}
		input.CreditCardID = &card.ID

	default:
		return false, domain.ErrInvalidTransactionShape
	}

	_, err = uc.entryUC.Create(ctx, input)
	return false, err
}

// resolveAccount finds the owner's account by name, creating it when it does
// not exist yet. Created accounts start empty; the imported rows rebuild the
// balance entry by entry.
func (uc *CSVUseCase) resolveAccount(ctx context.Context, ownerID, name, kind, currency string) (*domain.Account, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: missing account name", domain.ErrInvalidTransactionShape)
	}

	account, err := uc.accountRepo.GetByName(ctx, ownerID, name)
	if err == nil {
		return account, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	input := CreateAccountInput{
		OwnerID:  ownerID,
		Name:     name,
		Kind:     domain.AccountKind(kind),
		Currency: currency,
	}
	if kind == "" {
		input.Kind = domain.AccountOther
	}
	if currency == "" {
		input.Currency = "USD"
	}

	return uc.accountUC.CreateAccount(ctx, input)
}

func (uc *CSVUseCase) resolveCard(ctx context.Context, ownerID, name, limit string) (*domain.CreditCard, error) {
	card, err := uc.cardRepo.GetByName(ctx, ownerID, name)
	if err == nil {
		return card, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	creditLimit := decimal.Zero
	if limit != "" {
		creditLimit, err = decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("bad credit limit %q: %w", limit, err)
		}
	}

	// An imported card needs a linked account for future payments; a cash
	// placeholder is created when the owner has none.
	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID, 1, 0)
	if err != nil {
		return nil, err
	}

	var accountID string
	if len(accounts) > 0 {
		accountID = accounts[0].ID
	} else {
		placeholder, err := uc.accountUC.CreateAccount(ctx, CreateAccountInput{
			OwnerID:  ownerID,
			Name:     name + " payment account",
			Kind:     domain.AccountCash,
			Currency: "USD",
		})
		if err != nil {
			return nil, err
		}
		accountID = placeholder.ID
	}

	return uc.cardUC.CreateCreditCard(ctx, CreateCreditCardInput{
		OwnerID:     ownerID,
		AccountID:   accountID,
		Name:        name,
		CreditLimit: creditLimit,
	})
}

func (uc *CSVUseCase) auditImport(ctx context.Context, ownerID string, summary *ImportSummary, runErr error) {
	after, err := domain.MarshalState(summary)
	if err != nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		OwnerID:      ownerID,
		Action:       domain.AuditActionCSVImport,
		ResourceType: "ledger",
		ResourceID:   ownerID,
		AfterState:   after,
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}
	if runErr != nil {
		log.Status = domain.AuditStatusFailure
		log.ErrorMessage = runErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, log)
}

func (uc *CSVUseCase) allAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	var all []*domain.Account
	offset := 0
	for {
		page, err := uc.accountRepo.ListByOwner(ctx, ownerID, MaxListLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxListLimit {
			return all, nil
		}
		offset += MaxListLimit
	}
}

func (uc *CSVUseCase) allCards(ctx context.Context, ownerID string) ([]*domain.CreditCard, error) {
	var all []*domain.CreditCard
	offset := 0
	for {
		page, err := uc.cardRepo.ListByOwner(ctx, ownerID, MaxListLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxListLimit {
			return all, nil
		}
		offset += MaxListLimit
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrCreditCardNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
