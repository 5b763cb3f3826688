package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/middleware"
	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/service"
	"github.com/Lixing-Zhang/fast-order/internal/validation"
	"go.uber.org/zap"
)

const maxSubmissionBytes = 1 << 20

// FieldSet is one row of the fast order form
type FieldSet struct {
	Article  string `json:"article"`
	Quantity string `json:"quantity"`
}

// FormSchemaResponse tells a client how to name the form fields
type FormSchemaResponse struct {
	Prefix       string     `json:"prefix"`
	ArticleRole  string     `json:"articleRole"`
	QuantityRole string     `json:"quantityRole"`
	Rows         []FieldSet `json:"rows"`
}

// QuantityViolationResponse is a quantity violation with its display message
type QuantityViolationResponse struct {
	models.QuantityViolation
	Message string `json:"message"`
}

// SubmissionAcceptedResponse is returned when the order lines went into the cart
type SubmissionAcceptedResponse struct {
	Cart       *models.Cart   `json:"cart"`
	OrderLines map[string]int `json:"orderLines"`
}

// SubmissionRejectedResponse carries everything needed to redisplay the form
type SubmissionRejectedResponse struct {
	FormViolations     []validation.FieldViolation `json:"formViolations"`
	EmptySubmission    bool                        `json:"emptySubmission"`
	QuantityViolations []QuantityViolationResponse `json:"quantityViolations"`
	FormData           map[string]string           `json:"formData"`
	Cart               *models.Cart                `json:"cart,omitempty"`
}

// FastOrderHandler serves the fast order form
type FastOrderHandler struct {
	service *service.FastOrderService
	rows    int
	logger  *zap.Logger
}

// NewFastOrderHandler creates a handler suggesting rows field sets to clients
func NewFastOrderHandler(service *service.FastOrderService, rows int, logger *zap.Logger) *FastOrderHandler {
	return &FastOrderHandler{
		service: service,
		rows:    rows,
		logger:  logger,
	}
}

// GetForm handles GET /fast-order
func (h *FastOrderHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	schema := h.service.Schema()

	rows := make([]FieldSet, h.rows)
	for i := range rows {
		rows[i] = FieldSet{Article: schema.ArticleField(i), Quantity: schema.QuantityField(i)}
	}

	WriteJSON(w, http.StatusOK, FormSchemaResponse{
		Prefix:       schema.Prefix,
		ArticleRole:  schema.ArticleRole,
		QuantityRole: schema.QuantityRole,
		Rows:         rows,
	}, h.logger)
}

// Submit handles POST /fast-order
//   - 200: order lines added to the cart
//   - 400: unreadable body
//   - 422: field violations, empty submission or stock violations
//   - 500: infrastructure failure or inconsistent catalog
func (h *FastOrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		h.logger.Error("fast order submitted without session")
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	data, err := readSubmission(w, r)
	if err != nil {
		h.logger.Warn("failed to read fast order submission", zap.Error(err))
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	result, err := h.service.Submit(r.Context(), sessionID, data)
	if err != nil {
		switch {
		case errors.Is(err, fastorder.ErrMalformedFieldSet), errors.Is(err, service.ErrUnresolvedProduct):
			h.logger.Error("fast order passed validation but could not be applied",
				zap.String("session_id", sessionID), zap.Error(err))
		default:
			h.logger.Error("failed to submit fast order", zap.String("session_id", sessionID), zap.Error(err))
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	if !result.Accepted() {
		WriteJSON(w, http.StatusUnprocessableEntity, h.rejection(result, data), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, SubmissionAcceptedResponse{
		Cart:       result.Cart,
		OrderLines: result.Merged,
	}, h.logger)
}

func (h *FastOrderHandler) rejection(result *service.SubmissionResult, data map[string]string) SubmissionRejectedResponse {
	schema := h.service.Schema()

	// only the form's own fields go back to the client
	formData := make(map[string]string)
	for field, value := range data {
		if _, _, ok := schema.Parse(field); ok {
			formData[field] = value
		}
	}

	violations := make([]QuantityViolationResponse, 0, len(result.QuantityViolations))
	for _, v := range result.QuantityViolations {
		violations = append(violations, QuantityViolationResponse{QuantityViolation: v, Message: v.Message()})
	}

	formViolations := result.FieldViolations
	if formViolations == nil {
		formViolations = []validation.FieldViolation{}
	}

	return SubmissionRejectedResponse{
		FormViolations:     formViolations,
		EmptySubmission:    result.EmptySubmission,
		QuantityViolations: violations,
		FormData:           formData,
		Cart:               result.Cart,
	}
}

// readSubmission accepts either a form encoded body or a flat JSON object of
// strings. Repeated form keys keep their first value.
func readSubmission(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var data map[string]string
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to decode JSON submission: %w", err)
		}
		if data == nil {
			data = map[string]string{}
		}
		return data, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form submission: %w", err)
	}

	data := make(map[string]string, len(r.PostForm))
	for field, values := range r.PostForm {
		if len(values) > 0 {
			data[field] = values[0]
		}
	}
	return data, nil
}
