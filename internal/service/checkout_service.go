package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/payment"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ErrInvalidPlan is returned for a plan that is not offered
var ErrInvalidPlan = errors.New("plan must be mensal, semestral or anual")

// CheckoutGateway starts a paid plan at the payment gateway
type CheckoutGateway interface {
	Checkout(ctx context.Context, in payment.CheckoutInput) (*payment.CheckoutResult, error)
}

// PlanPrices is the total charged for each plan
type PlanPrices map[payment.Plan]decimal.Decimal

// CheckoutService validates buyer data and starts a checkout at the gateway
type CheckoutService struct {
	gateway CheckoutGateway
	prices  PlanPrices
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(gateway CheckoutGateway, prices PlanPrices) *CheckoutService {
	return &CheckoutService{gateway: gateway, prices: prices}
}

// CheckoutRequest is the buyer's checkout form
type CheckoutRequest struct {
	Plan        payment.Plan `json:"plano"`
	Name        string       `json:"nome"`
	CpfCnpj     string       `json:"cpfCnpj"`
	Email       string       `json:"email"`
	MobilePhone string       `json:"telefone"`
}

// Checkout validates the request and creates the customer and first charge.
// Every checkout starts on the direct strategy; the gateway client falls back
// to the proxy on its own.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*payment.CheckoutResult, error) {
	if !req.Plan.IsValid() {
		return nil, ErrInvalidPlan
	}
	price, ok := s.prices[req.Plan]
	if !ok || !price.IsPositive() {
		return nil, ErrInvalidPlan
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if !validCpfCnpj(req.CpfCnpj) {
		return nil, ErrInvalidCpfCnpj
	}
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validPhone(req.MobilePhone) {
		return nil, ErrInvalidPhone
	}

	result, err := s.gateway.Checkout(ctx, payment.CheckoutInput{
		Plan:        req.Plan,
		Price:       price,
		DueDate:     util.Today().Format(util.DateLayout),
		Name:        name,
		CpfCnpj:     digitsOnly(req.CpfCnpj),
		Email:       email,
		MobilePhone: digitsOnly(req.MobilePhone),
		Strategy:    payment.StrategyDirect,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
