package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/storage"
	"tally/internal/summary"
)

// LedgerService orchestrates personal transactions and budgets across
// SQLite, the summary cache and AMQP.
type LedgerService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
	summaries  *cache.LRUCache[summary.Report]
}

func NewLedgerService(repo *storage.Repository, amqpClient *amqp.Client, summaries *cache.LRUCache[summary.Report]) *LedgerService {
	return &LedgerService{
		storage:    repo,
		amqpClient: amqpClient,
		summaries:  summaries,
	}
}

// CreateTransaction validates and saves a transaction, then publishes the
// event. A publish failure never fails the request.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID int64, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.storage.CreateTransaction(ctx, userID, t); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	s.invalidateSummaries(userID)
	s.publish(ctx, amqp.KindTransactionCreated, strconv.FormatInt(t.ID, 10), userID, t)
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, filter)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateTransaction(ctx, userID, t); err != nil {
		return err
	}
	s.invalidateSummaries(userID)
	s.publish(ctx, amqp.KindTransactionUpdated, strconv.FormatInt(t.ID, 10), userID, t)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateSummaries(userID)
	s.publish(ctx, amqp.KindTransactionDeleted, strconv.FormatInt(id, 10), userID, nil)
	return nil
}

func (s *LedgerService) CreateBudget(ctx context.Context, userID int64, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.storage.CreateBudget(ctx, userID, b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	s.invalidateSummaries(userID)
	s.publish(ctx, amqp.KindBudgetCreated, strconv.FormatInt(b.ID, 10), userID, b)
	return nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, userID int64, month string) ([]core.Budget, error) {
	if month != "" && !core.ValidMonth(month) {
		return nil, core.ErrInvalidMonth
	}
	return s.storage.ListBudgets(ctx, userID, month)
}

func (s *LedgerService) UpdateBudget(ctx context.Context, userID int64, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateBudget(ctx, userID, b); err != nil {
		return err
	}
	s.invalidateSummaries(userID)
	return nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateSummaries(userID)
	return nil
}

// Summary builds the month report for a user, serving from cache when the
// ledger has not changed since the last build.
func (s *LedgerService) Summary(ctx context.Context, userID int64, month string) (summary.Report, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if !core.ValidMonth(month) {
		return summary.Report{}, core.ErrInvalidMonth
	}

	key := summaryKey(userID, month)
	if s.summaries != nil {
		if report, ok := s.summaries.Get(key); ok {
			return report, nil
		}
	}

	// Monthly series need the whole history, not just the report month.
	transactions, err := s.storage.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return summary.Report{}, err
	}
	budgets, err := s.storage.ListBudgets(ctx, userID, month)
	if err != nil {
		return summary.Report{}, err
	}

	report := summary.Build(transactions, budgets, month)
	if s.summaries != nil {
		s.summaries.Set(key, report)
	}
	return report, nil
}

func summaryKey(userID int64, month string) string {
	return fmt.Sprintf("user:%d:summary:%s", userID, month)
}

func (s *LedgerService) invalidateSummaries(userID int64) {
	if s.summaries != nil {
		s.summaries.DeletePrefix(fmt.Sprintf("user:%d:", userID))
	}
}

func (s *LedgerService) publish(ctx context.Context, kind, entityID string, userID int64, payload any) {
	if s.amqpClient == nil {
		return
	}
	event, err := amqp.NewEvent(kind, entityID, userID, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event", "kind", kind, "error", err)
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish event",
			"kind", kind, "entity_id", entityID, "error", err)
		// The write already succeeded locally; the event is best effort.
	}
}
