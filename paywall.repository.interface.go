// Package paywall provides x402 payment middleware for Go web applications.
//
// This file defines the receipt repository interface for settlement tracking.
// Following clean architecture principles, this abstracts the data layer from business logic.
package paywall

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itsatony/go-datarepository"
)

// ReceiptRepository defines the interface for settlement receipt persistence.
// Implementations can use Redis, PostgreSQL, MongoDB, or any other storage backend.
//
// All methods are context-aware and return errors following the error patterns in paywall.errors.go.
type ReceiptRepository interface {
	// Store persists a settlement receipt.
	Store(ctx context.Context, receipt *PaymentReceipt) error

	// GetByPaymentID retrieves a receipt by its payment ID.
	// Returns ErrReceiptNotFound if no receipt exists.
	GetByPaymentID(ctx context.Context, paymentID string) (*PaymentReceipt, error)

	// List returns receipts with pagination and the total count.
	List(ctx context.Context, offset, limit int) ([]*PaymentReceipt, int, error)
}

// LRUReceiptStore is the default in-memory receipt store, bounded by an LRU
// cache. Suits single-instance deployments; use the DataRepositoryAdapter
// for anything durable.
type LRUReceiptStore struct {
	cache *lru.Cache[string, *PaymentReceipt]
}

// NewLRUReceiptStore creates an in-memory receipt store holding at most size receipts.
func NewLRUReceiptStore(size int) (*LRUReceiptStore, error) {
	if size <= 0 {
		size = DEFAULT_RECEIPT_CACHE_SIZE
	}
	cache, err := lru.New[string, *PaymentReceipt](size)
	if err != nil {
		return nil, NewInternalError("receipt_cache", err)
	}
	return &LRUReceiptStore{cache: cache}, nil
}

// Store implements ReceiptRepository.Store
func (s *LRUReceiptStore) Store(ctx context.Context, receipt *PaymentReceipt) error {
	if receipt == nil {
		return NewValidationError("receipt", "cannot be nil")
	}
	if receipt.PaymentID == "" {
		return NewValidationError("payment_id", "cannot be empty")
	}
	s.cache.Add(receipt.PaymentID, receipt)
	return nil
}

// GetByPaymentID implements ReceiptRepository.GetByPaymentID
func (s *LRUReceiptStore) GetByPaymentID(ctx context.Context, paymentID string) (*PaymentReceipt, error) {
	if paymentID == "" {
		return nil, NewValidationError("payment_id", "cannot be empty")
	}
	receipt, ok := s.cache.Get(paymentID)
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// List implements ReceiptRepository.List
func (s *LRUReceiptStore) List(ctx context.Context, offset, limit int) ([]*PaymentReceipt, int, error) {
	keys := s.cache.Keys() // oldest to newest
	total := len(keys)

	if offset < 0 {
		offset = DEFAULT_QUERY_OFFSET
	}
	if limit <= 0 {
		limit = DEFAULT_QUERY_LIMIT
	}

	receipts := make([]*PaymentReceipt, 0, limit)
	for i := offset; i < total && len(receipts) < limit; i++ {
		if receipt, ok := s.cache.Peek(keys[i]); ok {
			receipts = append(receipts, receipt)
		}
	}
	return receipts, total, nil
}

// DataRepositoryAdapter adapts go-datarepository to the ReceiptRepository
// interface, for durable backends (Redis, etc.).
type DataRepositoryAdapter struct {
	repo datarepository.DataRepository
}

// NewDataRepositoryAdapter creates a new adapter for go-datarepository.
func NewDataRepositoryAdapter(repo datarepository.DataRepository) (*DataRepositoryAdapter, error) {
	if repo == nil {
		return nil, NewValidationError("repo", "cannot be nil")
	}
	return &DataRepositoryAdapter{
		repo: repo,
	}, nil
}

// Store implements ReceiptRepository.Store
func (a *DataRepositoryAdapter) Store(ctx context.Context, receipt *PaymentReceipt) error {
	if receipt == nil {
		return NewValidationError("receipt", "cannot be nil")
	}
	if receipt.PaymentID == "" {
		return NewValidationError("payment_id", "cannot be empty")
	}

	identifier := datarepository.SimpleIdentifier(receipt.PaymentID)
	err := a.repo.Upsert(ctx, identifier, receipt)
	if err != nil {
		return NewInternalError("repository_store", err)
	}
	return nil
}

// GetByPaymentID implements ReceiptRepository.GetByPaymentID
func (a *DataRepositoryAdapter) GetByPaymentID(ctx context.Context, paymentID string) (*PaymentReceipt, error) {
	if paymentID == "" {
		return nil, NewValidationError("payment_id", "cannot be empty")
	}

	identifier := datarepository.SimpleIdentifier(paymentID)
	var receipt PaymentReceipt

	err := a.repo.Read(ctx, identifier, &receipt)
	if err != nil {
		if datarepository.IsNotFoundError(err) {
			return nil, ErrReceiptNotFound
		}
		return nil, NewInternalError("repository_read", err)
	}

	return &receipt, nil
}

// List implements ReceiptRepository.List
func (a *DataRepositoryAdapter) List(ctx context.Context, offset, limit int) ([]*PaymentReceipt, int, error) {
	// go-datarepository uses List for wildcard searches
	pattern := "*"

	_, entities, err := a.repo.List(ctx, pattern)
	if err != nil {
		return nil, 0, NewInternalError("repository_list", err)
	}

	var receipts []*PaymentReceipt
	for _, entity := range entities {
		// Entity is a string JSON representation from the repository
		entityStr, ok := entity.(string)
		if !ok {
			continue // Skip non-string entities
		}

		var receipt PaymentReceipt
		if err := json.Unmarshal([]byte(entityStr), &receipt); err != nil {
			// Skip malformed entries, log in production
			continue
		}
		receipts = append(receipts, &receipt)
	}

	// Apply pagination manually (go-datarepository List doesn't support it)
	total := len(receipts)
	if offset < 0 {
		offset = DEFAULT_QUERY_OFFSET
	}
	if limit <= 0 {
		limit = DEFAULT_QUERY_LIMIT
	}
	start := offset
	end := offset + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	if start < end {
		receipts = receipts[start:end]
	} else {
		receipts = []*PaymentReceipt{}
	}

	return receipts, total, nil
}
