package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Billing cycles and types understood by the gateway
const (
	CycleMonthly       = "MONTHLY"
	BillingTypeDefault = "UNDEFINED"
)

// Customer is the payer registered at the gateway
type Customer struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	CpfCnpj     string `json:"cpfCnpj"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone"`
}

// SubscriptionRequest creates a recurring charge
type SubscriptionRequest struct {
	Customer    string      `json:"customer"`
	BillingType string      `json:"billingType"`
	Value       json.Number `json:"value"`
	NextDueDate string      `json:"nextDueDate"`
	Cycle       string      `json:"cycle"`
	Description string      `json:"description"`
}

// Subscription is the gateway's view of a recurring charge
type Subscription struct {
	ID string `json:"id"`
}

// InstallmentRequest creates a payment split into installments
type InstallmentRequest struct {
	Customer         string      `json:"customer"`
	BillingType      string      `json:"billingType"`
	InstallmentCount int         `json:"installmentCount"`
	TotalValue       json.Number `json:"totalValue"`
	DueDate          string      `json:"dueDate"`
	Description      string      `json:"description"`
}

// Payment is a single charge with its hosted invoice page
type Payment struct {
	ID          string `json:"id"`
	Installment string `json:"installment,omitempty"`
	InvoiceURL  string `json:"invoiceUrl"`
}

type paymentList struct {
	Data []Payment `json:"data"`
}

// CreateCustomer registers a customer
func (c *Client) CreateCustomer(ctx context.Context, strategy Strategy, customer Customer) (*Customer, Strategy, error) {
	var out Customer
	strategy, err := c.call(ctx, strategy, http.MethodPost, "/customers", customer, &out)
	if err != nil {
		return nil, strategy, fmt.Errorf("create customer: %w", err)
	}
	return &out, strategy, nil
}

// CreateSubscription starts a recurring charge
func (c *Client) CreateSubscription(ctx context.Context, strategy Strategy, req SubscriptionRequest) (*Subscription, Strategy, error) {
	var out Subscription
	strategy, err := c.call(ctx, strategy, http.MethodPost, "/subscriptions", req, &out)
	if err != nil {
		return nil, strategy, fmt.Errorf("create subscription: %w", err)
	}
	return &out, strategy, nil
}

// CreateInstallment creates an installment payment and returns its first charge
func (c *Client) CreateInstallment(ctx context.Context, strategy Strategy, req InstallmentRequest) (*Payment, Strategy, error) {
	var out Payment
	strategy, err := c.call(ctx, strategy, http.MethodPost, "/payments", req, &out)
	if err != nil {
		return nil, strategy, fmt.Errorf("create installment: %w", err)
	}
	return &out, strategy, nil
}

// ListSubscriptionPayments lists the charges generated by a subscription
func (c *Client) ListSubscriptionPayments(ctx context.Context, strategy Strategy, subscriptionID string) ([]Payment, Strategy, error) {
	var out paymentList
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/payments"
	strategy, err := c.call(ctx, strategy, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, strategy, fmt.Errorf("list subscription payments: %w", err)
	}
	return out.Data, strategy, nil
}
