package messaging

import (
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderDueMessage(t *testing.T) {
	valor := decimal.RequireFromString("150.00")
	r := &domain.Reminder{
		ID:         4,
		ClientID:   2,
		Descricao:  "Aluguel",
		Valor:      &valor,
		Tipo:       domain.ReminderTypeFixed,
		Vencimento: "2024-05-10",
		Telefone:   "11999990000",
		Nome:       "Ana",
	}

	msg := NewReminderDueMessage(r)
	body, err := msg.ToJSON()
	require.NoError(t, err)

	back, err := ReminderDueMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, int32(4), back.ReminderID)
	assert.Equal(t, "2024-05-10", back.Vencimento)
	assert.Equal(t, "11999990000", back.Telefone)
	require.NotNil(t, back.Valor)
	assert.True(t, valor.Equal(*back.Valor))
}

func TestReminderDueMessageFromJSON_Invalid(t *testing.T) {
	_, err := ReminderDueMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
