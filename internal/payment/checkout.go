package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Plan is a subscription plan offered at checkout
type Plan string

const (
	PlanMensal    Plan = "mensal"
	PlanSemestral Plan = "semestral"
	PlanAnual     Plan = "anual"
)

// IsValid reports whether the plan is known
func (p Plan) IsValid() bool {
	return p == PlanMensal || p == PlanSemestral || p == PlanAnual
}

// Installments is the number of installments the plan is billed in.
// Zero means a monthly subscription.
func (p Plan) Installments() int {
	switch p {
	case PlanSemestral:
		return 6
	case PlanAnual:
		return 12
	}
	return 0
}

// ErrNoInvoice is returned when the gateway produced no payable charge
var ErrNoInvoice = errors.New("payment gateway returned no invoice")

// CheckoutInput is everything needed to start a paid plan
type CheckoutInput struct {
	Plan        Plan
	Price       decimal.Decimal
	DueDate     string
	Name        string
	CpfCnpj     string
	Email       string
	MobilePhone string
	Strategy    Strategy
}

// CheckoutResult identifies what was created at the gateway
type CheckoutResult struct {
	Plan           Plan     `json:"plano"`
	CustomerID     string   `json:"customerId"`
	SubscriptionID string   `json:"subscriptionId,omitempty"`
	InstallmentID  string   `json:"installmentId,omitempty"`
	PaymentID      string   `json:"paymentId"`
	InvoiceURL     string   `json:"invoiceUrl"`
	Strategy       Strategy `json:"strategy"`
}

// Checkout creates the customer, then a subscription (mensal) or an
// installment payment (semestral, anual), and resolves the invoice URL of the
// first charge. The strategy that succeeded for one call is used for the next.
func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !in.Plan.IsValid() {
		return nil, fmt.Errorf("unknown plan %q", in.Plan)
	}

	customer, strategy, err := c.CreateCustomer(ctx, in.Strategy, Customer{
		Name:        in.Name,
		CpfCnpj:     in.CpfCnpj,
		Email:       in.Email,
		MobilePhone: in.MobilePhone,
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Plan: in.Plan, CustomerID: customer.ID}
	description := fmt.Sprintf("Fluxo - plano %s", in.Plan)

	if in.Plan.Installments() == 0 {
		sub, s, err := c.CreateSubscription(ctx, strategy, SubscriptionRequest{
			Customer:    customer.ID,
			BillingType: BillingTypeDefault,
			Value:       json.Number(in.Price.StringFixed(2)),
			NextDueDate: in.DueDate,
			Cycle:       CycleMonthly,
			Description: description,
		})
		if err != nil {
			return nil, err
		}
		strategy = s
		result.SubscriptionID = sub.ID

		payments, s, err := c.ListSubscriptionPayments(ctx, strategy, sub.ID)
		if err != nil {
			return nil, err
		}
		strategy = s
		if len(payments) == 0 || payments[0].InvoiceURL == "" {
			return nil, ErrNoInvoice
		}
		result.PaymentID = payments[0].ID
		result.InvoiceURL = payments[0].InvoiceURL
	} else {
		first, s, err := c.CreateInstallment(ctx, strategy, InstallmentRequest{
			Customer:         customer.ID,
			BillingType:      BillingTypeDefault,
			InstallmentCount: in.Plan.Installments(),
			TotalValue:       json.Number(in.Price.StringFixed(2)),
			DueDate:          in.DueDate,
			Description:      description,
		})
		if err != nil {
			return nil, err
		}
		strategy = s
		if first.InvoiceURL == "" {
			return nil, ErrNoInvoice
		}
		result.InstallmentID = first.Installment
		result.PaymentID = first.ID
		result.InvoiceURL = first.InvoiceURL
	}

	result.Strategy = strategy
	c.logger.Info().
		Str("plan", string(in.Plan)).
		Str("customer_id", customer.ID).
		Str("strategy", strategy.String()).
		Msg("Checkout created")

	return result, nil
}
