package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase/mocks"
)

type csvFixture struct {
	accountRepo *mocks.MockAccountRepository
	cardRepo    *mocks.MockCreditCardRepository
	entryRepo   *mocks.MockTransactionRepository
	entryUC     *usecase.TransactionUseCase
	transferUC  *usecase.TransferUseCase
	accountUC   *usecase.AccountUseCase
	cardUC      *usecase.CreditCardUseCase
	reconcileUC *usecase.ReconciliationUseCase
	uc          *usecase.CSVUseCase
}

// newCSVFixture wires the full usecase stack over shared in-memory repos,
// the same shape main assembles in production.
func newCSVFixture(t *testing.T) *csvFixture {
	ctrl := gomock.NewController(t)
	auditRepo := mocks.NewMockAuditRepository(ctrl)
	auditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	auditRepo.EXPECT().CreateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f := &csvFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		cardRepo:    mocks.NewMockCreditCardRepository(),
		entryRepo:   mocks.NewMockTransactionRepository(),
	}
	txMgr := mocks.NewMockTransactionManager()
	pointRepo := mocks.NewMockBalancePointRepository()
	jobRepo := mocks.NewMockRecomputeJobRepository()
	idGen := mocks.NewMockIDGenerator()

	f.entryUC = usecase.NewTransactionUseCase(txMgr, f.accountRepo, f.cardRepo, f.entryRepo, pointRepo, jobRepo, idGen, usecase.MutatorConfig{})
	f.transferUC = usecase.NewTransferUseCase(txMgr, f.accountRepo, f.cardRepo, f.entryRepo, pointRepo, jobRepo, idGen, usecase.MutatorConfig{})
	f.accountUC = usecase.NewAccountUseCase(f.accountRepo, f.entryUC, auditRepo, idGen)
	f.cardUC = usecase.NewCreditCardUseCase(f.cardRepo, f.accountRepo, idGen)
	f.reconcileUC = usecase.NewReconciliationUseCase(txMgr, f.accountRepo, f.cardRepo, f.entryRepo, pointRepo, auditRepo, idGen, decimal.Zero)
	f.uc = usecase.NewCSVUseCase(f.accountRepo, f.cardRepo, f.entryRepo, f.entryUC, f.transferUC, f.accountUC, f.cardUC, auditRepo, idGen)
	return f
}

// seedLedger builds a small but representative ledger for the owner:
// two accounts with an opening balance, plain income and expense, a card
// purchase, and a transfer.
func (f *csvFixture) seedLedger(t *testing.T, ownerID string) {
	t.Helper()
	ctx := context.Background()

	checking, err := f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		OwnerID: ownerID, Name: "Checking", Kind: domain.AccountChecking, Currency: "USD",
		OpeningBalance: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("seeding checking: %v", err)
	}

	savings, err := f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		OwnerID: ownerID, Name: "Savings", Kind: domain.AccountSavings, Currency: "USD",
	})
	if err != nil {
		t.Fatalf("seeding savings: %v", err)
	}

	card, err := f.cardUC.CreateCreditCard(ctx, usecase.CreateCreditCardInput{
		OwnerID: ownerID, AccountID: checking.ID, Name: "Sapphire", CreditLimit: decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("seeding card: %v", err)
	}

	now := time.Now()
	steps := []usecase.CreateTransactionInput{
		{OwnerID: ownerID, Amount: decimal.NewFromInt(500), MovementType: domain.MovementIncome, AccountID: &checking.ID, Description: "salary", Date: now, IsPaid: true},
		{OwnerID: ownerID, Amount: decimal.NewFromInt(120), MovementType: domain.MovementExpense, AccountID: &checking.ID, Description: "groceries", Date: now, IsPaid: true},
		{OwnerID: ownerID, Amount: decimal.NewFromInt(80), MovementType: domain.MovementExpense, CreditCardID: &card.ID, Description: "online order", Date: now, IsPaid: false},
	}
	for _, step := range steps {
		if _, err := f.entryUC.Create(ctx, step); err != nil {
			t.Fatalf("seeding entry %q: %v", step.Description, err)
		}
	}

	if _, err := f.transferUC.CreateTransfer(ctx, usecase.CreateTransferInput{
		OwnerID: ownerID, FromAccountID: checking.ID, ToAccountID: savings.ID,
		Amount: decimal.NewFromInt(200), Description: "monthly savings", Date: now,
	}); err != nil {
		t.Fatalf("seeding transfer: %v", err)
	}

	_ = savings
}

func TestCSVUseCase_RoundTrip(t *testing.T) {
	f := newCSVFixture(t)
	f.seedLedger(t, "owner-1")

	var buf bytes.Buffer
	rows, err := f.uc.Export(context.Background(), "owner-1", &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	// Opening balance, salary, groceries, card purchase, one transfer row.
	if rows != 5 {
		t.Errorf("expected 5 exported rows, got %d", rows)
	}

	summary, err := f.uc.Import(context.Background(), "owner-2", bytes.NewReader(buf.Bytes()), false)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != 5 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// The rebuilt ledger reconciles to zero discrepancy on every account.
	results, err := f.reconcileUC.ReconcileAll(context.Background(), "owner-2")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 accounts for owner-2, got %d", len(results))
	}
	for _, r := range results {
		if !r.IsBalanced {
			t.Errorf("account %s: discrepancy %s after import", r.AccountID, r.Discrepancy)
		}
	}

	// Balances match the source owner's.
	srcChecking, _ := f.accountRepo.GetByName(context.Background(), "owner-1", "Checking")
	dstChecking, _ := f.accountRepo.GetByName(context.Background(), "owner-2", "Checking")
	if !srcChecking.Balance.Equal(dstChecking.Balance) {
		t.Errorf("checking balance mismatch: source %s, imported %s", srcChecking.Balance, dstChecking.Balance)
	}
	srcSavings, _ := f.accountRepo.GetByName(context.Background(), "owner-1", "Savings")
	dstSavings, _ := f.accountRepo.GetByName(context.Background(), "owner-2", "Savings")
	if !srcSavings.Balance.Equal(dstSavings.Balance) {
		t.Errorf("savings balance mismatch: source %s, imported %s", srcSavings.Balance, dstSavings.Balance)
	}

	srcCard, _ := f.cardRepo.GetByName(context.Background(), "owner-1", "Sapphire")
	dstCard, _ := f.cardRepo.GetByName(context.Background(), "owner-2", "Sapphire")
	if !srcCard.Outstanding.Equal(dstCard.Outstanding) {
		t.Errorf("card outstanding mismatch: source %s, imported %s", srcCard.Outstanding, dstCard.Outstanding)
	}
}

func TestCSVUseCase_ReimportIsIdempotent(t *testing.T) {
	f := newCSVFixture(t)
	f.seedLedger(t, "owner-1")

	var buf bytes.Buffer
	if _, err := f.uc.Export(context.Background(), "owner-1", &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if _, err := f.uc.Import(context.Background(), "owner-2", bytes.NewReader(buf.Bytes()), false); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	summary, err := f.uc.Import(context.Background(), "owner-2", bytes.NewReader(buf.Bytes()), false)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if summary.Imported != 0 || summary.Skipped != 5 {
		t.Errorf("expected everything skipped on re-import, got %+v", summary)
	}
}

func TestCSVUseCase_ImportSkipErrors(t *testing.T) {
	f := newCSVFixture(t)

	csvData := strings.Join([]string{
		"transaction_date,transaction_movement_type,transaction_amount,transaction_description,transaction_category,transaction_is_paid,account_name,account_kind,account_currency,credit_card_name,credit_card_limit,transfer_from_account_name,transfer_to_account_name",
		"2026-08-01,income,100,salary,,true,Checking,checking,USD,,,,",
		"2026-08-02,expense,not-a-number,bad row,,true,Checking,checking,USD,,,,",
		"2026-08-03,expense,40,groceries,,true,Checking,checking,USD,,,,",
	}, "\n")

	summary, err := f.uc.Import(context.Background(), "owner-1", strings.NewReader(csvData), true)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if summary.Imported != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Line != 3 {
		t.Errorf("expected the bad row reported at line 3, got %+v", summary.Errors)
	}

	account, err := f.accountRepo.GetByName(context.Background(), "owner-1", "Checking")
	if err != nil {
		t.Fatalf("imported account missing: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected balance 60, got %s", account.Balance)
	}
}

func TestCSVUseCase_ImportRejectsBadHeader(t *testing.T) {
	f := newCSVFixture(t)

	csvData := "date,amount\n2026-08-01,100\n"
	if _, err := f.uc.Import(context.Background(), "owner-1", strings.NewReader(csvData), false); err == nil {
		t.Fatal("expected header mismatch error")
	}
}
