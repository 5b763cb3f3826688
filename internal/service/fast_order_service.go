package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/metrics"
	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"github.com/Lixing-Zhang/fast-order/internal/validation"
	"go.uber.org/zap"
)

// errRejected aborts a cart update without persisting it
var errRejected = errors.New("order lines rejected")

// SubmissionResult is the outcome of one fast order submission. Exactly one of
// the rejection fields is set when the submission was not applied.
type SubmissionResult struct {
	Cart               *models.Cart
	Merged             map[string]int
	FieldViolations    []validation.FieldViolation
	EmptySubmission    bool
	QuantityViolations []models.QuantityViolation
}

// Accepted reports whether the order lines were put into the cart
func (r *SubmissionResult) Accepted() bool {
	return len(r.FieldViolations) == 0 && !r.EmptySubmission && len(r.QuantityViolations) == 0
}

// FastOrderService runs a fast order submission from raw form data to cart
type FastOrderService struct {
	schema     *fastorder.Schema
	merger     *fastorder.Merger
	catalog    Catalog
	reconciler *CartReconciler
	carts      repository.CartStore
	orderLog   repository.OrderLogRepository
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewFastOrderService wires the fast order flow. m may be nil.
func NewFastOrderService(
	schema *fastorder.Schema,
	catalog Catalog,
	carts repository.CartStore,
	orderLog repository.OrderLogRepository,
	m *metrics.Metrics,
	log *zap.Logger,
) *FastOrderService {
	return &FastOrderService{
		schema:     schema,
		merger:     fastorder.NewMerger(schema),
		catalog:    catalog,
		reconciler: NewCartReconciler(catalog, log),
		carts:      carts,
		orderLog:   orderLog,
		metrics:    m,
		log:        log,
	}
}

// Schema returns the form field schema the service expects
func (s *FastOrderService) Schema() *fastorder.Schema {
	return s.schema
}

// Cart returns the current cart of a session
func (s *FastOrderService) Cart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.carts.Get(ctx, sessionID)
}

// Submit validates the submitted fields, merges them into order lines and
// applies those to the session cart. User errors come back in the result;
// the returned error is reserved for infrastructure failures and broken
// contracts between validation and merging.
func (s *FastOrderService) Submit(ctx context.Context, sessionID string, data map[string]string) (*SubmissionResult, error) {
	result, err := s.submit(ctx, sessionID, data)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeError, 0)
		return nil, err
	}

	switch {
	case len(result.FieldViolations) > 0:
		s.metrics.ObserveSubmission(metrics.OutcomeFieldViolations, 0)
	case result.EmptySubmission:
		s.metrics.ObserveSubmission(metrics.OutcomeEmpty, 0)
	case len(result.QuantityViolations) > 0:
		s.metrics.ObserveSubmission(metrics.OutcomeQuantityViolations, len(result.Merged))
	default:
		s.metrics.ObserveSubmission(metrics.OutcomeAccepted, len(result.Merged))
	}

	return result, nil
}

func (s *FastOrderService) submit(ctx context.Context, sessionID string, data map[string]string) (*SubmissionResult, error) {
	log := s.log.With(zap.String("session_id", sessionID))

	fieldViolations, err := validation.Validate(ctx, s.schema, data, s.catalog)
	if err != nil {
		return nil, fmt.Errorf("field validation failed: %w", err)
	}
	if len(fieldViolations) > 0 {
		log.Info("fast order rejected by field validation", zap.Int("violations", len(fieldViolations)))
		return &SubmissionResult{FieldViolations: fieldViolations}, nil
	}

	merged, err := s.merger.Merge(data)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		log.Info("fast order submitted without order lines")
		return &SubmissionResult{EmptySubmission: true, Merged: merged}, nil
	}

	var quantityViolations []models.QuantityViolation
	cart, err := s.carts.Update(ctx, sessionID, func(cart *models.Cart) error {
		violations, err := s.reconciler.Reconcile(ctx, merged, cart)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			quantityViolations = violations
			return errRejected
		}
		return nil
	})

	if errors.Is(err, errRejected) {
		log.Info("fast order rejected by stock", zap.Int("violations", len(quantityViolations)))
		current, err := s.carts.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &SubmissionResult{Cart: current, Merged: merged, QuantityViolations: quantityViolations}, nil
	}
	if err != nil {
		return nil, err
	}

	entry := models.NewOrderLogEntry(models.EventAddToCart, sessionID, merged)
	if err := s.orderLog.Append(ctx, entry); err != nil {
		// the cart is already updated, a missing audit entry must not undo that
		log.Error("failed to write fast order log", zap.Error(err))
	}

	log.Info("fast order added to cart", zap.Int("lines", len(merged)), zap.Int("cart_items", len(cart.Items)))
	return &SubmissionResult{Cart: cart, Merged: merged}, nil
}
