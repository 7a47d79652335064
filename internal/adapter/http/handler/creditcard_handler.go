package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// CreditCardService defines the behavior needed by CreditCardHandler.
type CreditCardService interface {
	CreateCreditCard(ctx context.Context, input usecase.CreateCreditCardInput) (*domain.CreditCard, error)
	GetCreditCard(ctx context.Context, ownerID, id string) (*domain.CreditCard, error)
	ListCreditCards(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error)
}

// CardPaymentService defines the payment behavior needed by CreditCardHandler.
type CardPaymentService interface {
	PayCreditCard(ctx context.Context, input usecase.PayCreditCardInput) (*usecase.TransferResult, error)
}

// CreditCardHandler handles credit card HTTP requests.
type CreditCardHandler struct {
	cardUC    CreditCardService
	paymentUC CardPaymentService
}

// NewCreditCardHandler creates a new CreditCardHandler.
func NewCreditCardHandler(cardUC CreditCardService, paymentUC CardPaymentService) *CreditCardHandler {
	return &CreditCardHandler{cardUC: cardUC, paymentUC: paymentUC}
}

// Create registers a credit card linked to an existing account.
func (h *CreditCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCreditCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}

	card, err := h.cardUC.CreateCreditCard(r.Context(), req.ToUseCaseInput(ownerID(r)))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreditCardFromDomain(card))
}

// Get retrieves a credit card by ID.
func (h *CreditCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing credit card ID", "invalid_body")
		return
	}

	card, err := h.cardUC.GetCreditCard(r.Context(), ownerID(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditCardFromDomain(card))
}

// List lists the owner's credit cards.
func (h *CreditCardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardUC.ListCreditCards(r.Context(), ownerID(r),
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCreditCardsResponse{
		CreditCards: dto.CreditCardsFromDomain(cards),
		Total:       int64(len(cards)),
	})
}

// Pay pays down the card's outstanding debt from its linked account.
func (h *CreditCardHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing credit card ID", "invalid_body")
		return
	}

	var req dto.PayCreditCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}

	result, err := h.paymentUC.PayCreditCard(r.Context(), req.ToUseCaseInput(ownerID(r), id))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromResult(result))
}
