package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxImportSize caps the size of an uploaded CSV file
const MaxImportSize = 2 << 20

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	receiptService     *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
	}
}

// BatchUpdateResponse lists the rows changed by a batch edit
type BatchUpdateResponse struct {
	Updated      int                   `json:"updated"`
	Transactions []*domain.Transaction `json:"transacoes"`
}

// GetTransactions handles GET /api/v1/transactions?from&to&operacao&categoria
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	filters := &domain.TransactionFilters{}
	var fieldErrors []ValidationError

	if from := c.QueryParam("from"); from != "" {
		d, err := util.ParseDate(from)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "from", Message: "Must be in YYYY-MM-DD format"})
		} else {
			filters.StartDate = &d
		}
	}
	if to := c.QueryParam("to"); to != "" {
		d, err := util.ParseDate(to)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "to", Message: "Must be in YYYY-MM-DD format"})
		} else {
			filters.EndDate = &d
		}
	}
	if raw := c.QueryParam("operacao"); raw != "" {
		op, ok := report.NormalizeKind(raw)
		if !ok {
			fieldErrors = append(fieldErrors, ValidationError{Field: "operacao", Message: "Must be one of: entrada, saída"})
		} else {
			filters.Operacao = &op
		}
	}
	if categoria := c.QueryParam("categoria"); categoria != "" {
		filters.Categoria = &categoria
	}
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid filters", fieldErrors)
	}

	transactions, err := h.transactionService.List(c.Request().Context(), clientID, filters)
	if err != nil {
		return respondError(c, err, "Failed to get transactions")
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	return c.JSON(http.StatusOK, transactions)
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var req service.TransactionInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}
	return c.JSON(http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req service.TransactionInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.Update(c.Request().Context(), clientID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update transaction")
	}
	return c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	ctx := c.Request().Context()
	if h.receiptService != nil && h.receiptService.IsEnabled() {
		// Best effort; the row is removed even if the objects linger.
		if _, err := h.receiptService.Remove(ctx, clientID, id); err != nil && !errors.Is(err, service.ErrReceiptNotFound) && !errors.Is(err, domain.ErrTransactionNotFound) {
			log.Warn().Err(err).Int32("client_id", clientID).Int32("transaction_id", id).Msg("Failed to remove receipt before delete")
		}
	}

	if err := h.transactionService.Delete(ctx, clientID, id); err != nil {
		return respondError(c, err, "Failed to delete transaction")
	}
	return c.NoContent(http.StatusNoContent)
}

// BatchUpdate handles PATCH /api/v1/transactions/batch
func (h *TransactionHandler) BatchUpdate(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var req service.BatchUpdateInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	updated, err := h.transactionService.BatchUpdate(c.Request().Context(), clientID, req)
	if err != nil {
		return respondError(c, err, "Failed to update transactions")
	}
	return c.JSON(http.StatusOK, BatchUpdateResponse{Updated: len(updated), Transactions: updated})
}

// ImportCSV handles POST /api/v1/transactions/import. The file is taken from
// the multipart field "file", or from the raw body when the request is not
// multipart.
func (h *TransactionHandler) ImportCSV(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var src io.Reader
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > MaxImportSize {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 2MB"},
			})
		}
		f, err := file.Open()
		if err != nil {
			log.Error().Err(err).Msg("Failed to open uploaded file")
			return NewInternalError(c, "Failed to process file")
		}
		defer f.Close()
		src = f
	} else {
		src = http.MaxBytesReader(c.Response(), c.Request().Body, MaxImportSize)
	}

	result, err := h.transactionService.ImportCSV(c.Request().Context(), clientID, src)
	if err != nil {
		return respondError(c, err, "Failed to import transactions")
	}

	log.Info().Int32("client_id", clientID).Int("imported", result.Imported).Msg("Imported transactions")
	return c.JSON(http.StatusCreated, result)
}

// UploadReceipt handles POST /api/v1/transactions/:id/receipt
func (h *TransactionHandler) UploadReceipt(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxReceiptSize {
		return respondError(c, service.ErrReceiptTooLarge, "Failed to upload receipt")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	transaction, err := h.receiptService.Attach(c.Request().Context(), clientID, id, data, file.Filename)
	if err != nil {
		return respondError(c, err, "Failed to upload receipt")
	}

	log.Info().Int32("client_id", clientID).Int32("transaction_id", id).Msg("Receipt uploaded")
	return c.JSON(http.StatusCreated, transaction)
}

// GetReceipt handles GET /api/v1/transactions/:id/receipt
func (h *TransactionHandler) GetReceipt(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}
	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}

	urls, err := h.receiptService.URLs(c.Request().Context(), clientID, id)
	if err != nil {
		return respondError(c, err, "Failed to get receipt")
	}
	return c.JSON(http.StatusOK, urls)
}

// DeleteReceipt handles DELETE /api/v1/transactions/:id/receipt
func (h *TransactionHandler) DeleteReceipt(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}
	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}

	transaction, err := h.receiptService.Remove(c.Request().Context(), clientID, id)
	if err != nil {
		return respondError(c, err, "Failed to delete receipt")
	}
	return c.JSON(http.StatusOK, transaction)
}
