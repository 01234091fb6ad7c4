package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
	"wdmmg/internal/pagination"
	"wdmmg/internal/repository"
	"wdmmg/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest represents the payload for creating or replacing a
// transaction. Amount accepts a JSON number or a decimal string.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Category    string          `json:"category" binding:"required,category"`
	Description string          `json:"description" binding:"required"`
	Timestamp   *string         `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// BulkDeleteRequest is the object form of a bulk delete body.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse reports how many transactions were removed.
type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

func (r *TransactionRequest) toInput() (services.TransactionInput, error) {
	in := services.TransactionInput{
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
	}
	if r.Timestamp != nil && *r.Timestamp != "" {
		ts, err := parseFlexibleTime(*r.Timestamp)
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid timestamp format. Use ISO format.")
		}
		in.Timestamp = &ts
	}
	return in, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an expense. The timestamp defaults to now.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"amount": txn.Amount.String(), "category": txn.Category})

	c.JSON(http.StatusOK, txn)
}

// ListTransactions returns the caller's transactions. Without page or
// page_size every match is returned as an array; with either, one page.
// @Summary     List transactions
// @Description Get the caller's matching transactions, newest first, as an array. Supplying page or page_size switches to a paginated object.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       category   query string false "Filter by category (unknown values are ignored)"
// @Param       start_date query string false "Earliest timestamp, ISO-8601"
// @Param       end_date   query string false "Latest timestamp, ISO-8601"
// @Param       search     query string false "Case-insensitive description substring"
// @Param       page       query int    false "Page number (enables pagination, default 1)"
// @Param       page_size  query int    false "Items per page (enables pagination, default 20, max 100)"
// @Success     200 {array}  models.Transaction "Matching transactions; a pagination.PageResponse when paginated"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid pagination parameters"))
		return
	}

	var filter repository.TransactionFilter
	if cat := c.Query("category"); models.IsValidCategory(cat) {
		category := models.Category(cat)
		filter.Category = &category
	}
	if s := c.Query("start_date"); s != "" {
		from, err := parseFlexibleTime(s)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid start_date format. Use ISO format."))
			return
		}
		filter.From = &from
	}
	if s := c.Query("end_date"); s != "" {
		to, err := parseFlexibleTime(s)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid end_date format. Use ISO format."))
			return
		}
		filter.To = &to
	}
	filter.Search = strings.TrimSpace(c.Query("search"))

	if !paginated(c) {
		txns, err := h.transactionService.ListAllTransactions(c.Request.Context(), userID, filter)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, txns)
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// paginated reports whether the query asks for a single page.
func paginated(c *gin.Context) bool {
	_, page := c.GetQuery("page")
	_, size := c.GetQuery("page_size")
	return page || size
}

// GetTransaction handles the retrieval of a single transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// UpdateTransaction replaces a transaction's fields
// @Summary     Update transaction
// @Description Replace amount, category and description. The timestamp is kept unless supplied.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"amount": txn.Amount.String(), "category": txn.Category})

	c.JSON(http.StatusOK, txn)
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_TRANSACTION", "transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// BulkDeleteTransactions deletes several transactions at once
// @Summary     Bulk delete transactions
// @Description Delete the listed transactions. Accepts a JSON array of ids or {"ids": [...]}. Unknown ids are skipped.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body []string true "Transaction IDs"
// @Success     200 {object} BulkDeleteResponse "Deleted count"
// @Failure     400 {object} ErrorResponse "Empty list"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Router      /transactions/bulk-delete [post]
func (h *TransactionHandler) BulkDeleteTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ids, err := decodeIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.transactionService.BulkDeleteTransactions(c.Request.Context(), userID, ids)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "BULK_DELETE_TRANSACTIONS", "transaction", "", c.ClientIP(),
		map[string]interface{}{"requested": len(ids), "deleted": n})

	c.JSON(http.StatusOK, BulkDeleteResponse{
		Message:      "Transactions deleted successfully",
		DeletedCount: n,
	})
}

// decodeIDs reads either a bare JSON array or an {"ids": [...]} object.
func decodeIDs(c *gin.Context) ([]string, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
	}

	trimmed := bytes.TrimSpace(raw)
	var ids []string
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Transaction IDs must be strings")
		}
		return ids, nil
	}

	var req BulkDeleteRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
	}
	return req.IDs, nil
}
