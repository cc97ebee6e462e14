package service

import (
	"context"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	inputs []payment.CheckoutInput
	err    error
}

func (g *stubGateway) Checkout(ctx context.Context, in payment.CheckoutInput) (*payment.CheckoutResult, error) {
	g.inputs = append(g.inputs, in)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.CheckoutResult{
		Plan:       in.Plan,
		CustomerID: "cus_1",
		PaymentID:  "pay_1",
		InvoiceURL: "https://pay.test/i/1",
		Strategy:   payment.StrategyProxy,
	}, nil
}

func testPrices() PlanPrices {
	return PlanPrices{
		payment.PlanMensal:    decimal.RequireFromString("29.90"),
		payment.PlanSemestral: decimal.RequireFromString("161.40"),
		payment.PlanAnual:     decimal.RequireFromString("286.80"),
	}
}

func checkoutRequest() CheckoutRequest {
	return CheckoutRequest{
		Plan:        payment.PlanAnual,
		Name:        " Ana Souza ",
		CpfCnpj:     "123.456.789-09",
		Email:       "ana@example.com",
		MobilePhone: "(11) 98765-4321",
	}
}

func TestCheckoutService_Checkout(t *testing.T) {
	gw := &stubGateway{}
	svc := NewCheckoutService(gw, testPrices())

	result, err := svc.Checkout(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/i/1", result.InvoiceURL)
	assert.Equal(t, payment.StrategyProxy, result.Strategy)

	require.Len(t, gw.inputs, 1)
	in := gw.inputs[0]
	assert.Equal(t, payment.PlanAnual, in.Plan)
	assert.True(t, decimal.RequireFromString("286.80").Equal(in.Price))
	assert.Equal(t, "Ana Souza", in.Name)
	assert.Equal(t, "12345678909", in.CpfCnpj)
	assert.Equal(t, "11987654321", in.MobilePhone)
	assert.Equal(t, payment.StrategyDirect, in.Strategy)
	assert.Len(t, in.DueDate, len("2006-01-02"))
}

func TestCheckoutService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CheckoutRequest)
		want   error
	}{
		{"unknown plan", func(r *CheckoutRequest) { r.Plan = "vitalicio" }, ErrInvalidPlan},
		{"missing name", func(r *CheckoutRequest) { r.Name = "" }, domain.ErrNameRequired},
		{"short document", func(r *CheckoutRequest) { r.CpfCnpj = "123" }, ErrInvalidCpfCnpj},
		{"bad email", func(r *CheckoutRequest) { r.Email = "ana@" }, ErrInvalidEmail},
		{"bad phone", func(r *CheckoutRequest) { r.MobilePhone = "1234" }, ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			svc := NewCheckoutService(gw, testPrices())
			req := checkoutRequest()
			tt.modify(&req)

			_, err := svc.Checkout(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, gw.inputs, "gateway must not be called")
		})
	}
}

func TestCheckoutService_UnpricedPlan(t *testing.T) {
	svc := NewCheckoutService(&stubGateway{}, PlanPrices{payment.PlanMensal: decimal.RequireFromString("29.90")})

	_, err := svc.Checkout(context.Background(), checkoutRequest())
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestCheckoutService_GatewayError(t *testing.T) {
	gw := &stubGateway{err: payment.ErrUnavailable}
	svc := NewCheckoutService(gw, testPrices())

	_, err := svc.Checkout(context.Background(), checkoutRequest())
	assert.ErrorIs(t, err, payment.ErrUnavailable)
}
