package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/settle"
	"tally/internal/storage"
)

// SettlementPlan is the computed payoff for a group at a point in time.
// Balances reflect the full expense log net of recorded settlements.
type SettlementPlan struct {
	Balances  map[string]int64
	Transfers []settle.Transfer
}

// GroupService orchestrates shared-expense groups, their expense logs and
// settlement planning.
type GroupService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
	plans      *cache.LRUCache[SettlementPlan]
}

func NewGroupService(repo *storage.Repository, amqpClient *amqp.Client, plans *cache.LRUCache[SettlementPlan]) *GroupService {
	return &GroupService{
		storage:    repo,
		amqpClient: amqpClient,
		plans:      plans,
	}
}

// CreateGroup creates a group with its initial member names, preserving the
// given order as the membership order.
func (s *GroupService) CreateGroup(ctx context.Context, userID int64, name string, memberNames []string) (*core.Group, error) {
	g := &core.Group{
		ID:   uuid.NewString(),
		Name: name,
	}
	for _, n := range memberNames {
		g.Members = append(g.Members, core.Member{ID: uuid.NewString(), Name: n})
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	for _, m := range g.Members {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.storage.CreateGroup(ctx, userID, g); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}
	s.publish(ctx, amqp.KindGroupCreated, g.ID, userID, g)
	return g, nil
}

func (s *GroupService) ListGroups(ctx context.Context, userID int64) ([]core.Group, error) {
	return s.storage.ListGroups(ctx, userID)
}

func (s *GroupService) GetGroup(ctx context.Context, userID int64, groupID string) (*core.Group, error) {
	return s.storage.GetGroup(ctx, userID, groupID)
}

// AddMember appends a named member to the group's membership order.
func (s *GroupService) AddMember(ctx context.Context, userID int64, groupID, name string) (*core.Member, error) {
	g, err := s.storage.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	m := core.Member{ID: uuid.NewString(), Name: name}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.AddMember(ctx, g.ID, m); err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}
	s.invalidatePlan(groupID)
	return &m, nil
}

// ExpenseInput carries the caller-supplied fields of a new group expense.
// A nil Shares means an equal split.
type ExpenseInput struct {
	Description string
	PayerID     string
	Amount      core.Money
	Date        core.Date
	Shares      map[string]int64
}

// AddExpense validates an expense against the group and appends it to the
// log along with its resolved per-member shares.
func (s *GroupService) AddExpense(ctx context.Context, userID int64, groupID string, in ExpenseInput) (*core.GroupExpense, error) {
	g, err := s.storage.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	split := core.EqualSplit()
	if in.Shares != nil {
		split = core.CustomSplit(in.Shares)
	}
	e := &core.GroupExpense{
		ID:          uuid.NewString(),
		GroupID:     g.ID,
		Description: in.Description,
		PayerID:     in.PayerID,
		Amount:      in.Amount,
		Date:        in.Date,
		Split:       split,
	}

	shares, err := settle.Shares(*g, *e)
	if err != nil {
		return nil, err
	}
	if err := s.storage.CreateGroupExpense(ctx, e, shares); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}
	s.invalidatePlan(groupID)
	s.publish(ctx, amqp.KindExpenseAdded, e.ID, userID, e)
	return e, nil
}

func (s *GroupService) ListExpenses(ctx context.Context, userID int64, groupID string) ([]core.GroupExpense, error) {
	if _, err := s.storage.GetGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.storage.ListGroupExpenses(ctx, groupID)
}

// SettlementInput carries the caller-supplied fields of a recorded payment.
type SettlementInput struct {
	FromID string
	ToID   string
	Amount core.Money
	Date   core.Date
	Note   string
}

// RecordSettlement appends a payment between two members. Recorded payments
// enter the balance derivation, so the next plan reflects them.
func (s *GroupService) RecordSettlement(ctx context.Context, userID int64, groupID string, in SettlementInput) (*core.Settlement, error) {
	g, err := s.storage.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	st := &core.Settlement{
		ID:      uuid.NewString(),
		GroupID: g.ID,
		FromID:  in.FromID,
		ToID:    in.ToID,
		Amount:  in.Amount,
		Date:    in.Date,
		Note:    in.Note,
	}
	if err := g.ValidateSettlement(*st); err != nil {
		return nil, err
	}
	if err := s.storage.CreateSettlement(ctx, st); err != nil {
		return nil, fmt.Errorf("save settlement: %w", err)
	}
	s.invalidatePlan(groupID)
	s.publish(ctx, amqp.KindSettlementRecorded, st.ID, userID, st)
	return st, nil
}

func (s *GroupService) ListSettlements(ctx context.Context, userID int64, groupID string) ([]core.Settlement, error) {
	if _, err := s.storage.GetGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.storage.ListSettlements(ctx, groupID)
}

// Plan derives the group's current balances and the minimal transfer set
// that settles them.
func (s *GroupService) Plan(ctx context.Context, userID int64, groupID string) (SettlementPlan, error) {
	// Ownership is checked before the cache so a cached plan never leaks
	// across accounts.
	g, err := s.storage.GetGroup(ctx, userID, groupID)
	if err != nil {
		return SettlementPlan{}, err
	}

	key := planKey(groupID)
	if s.plans != nil {
		if plan, ok := s.plans.Get(key); ok {
			return plan, nil
		}
	}

	expenses, err := s.storage.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return SettlementPlan{}, err
	}
	settlements, err := s.storage.ListSettlements(ctx, groupID)
	if err != nil {
		return SettlementPlan{}, err
	}

	balances, transfers, err := settle.Plan(*g, expenses, settlements)
	if err != nil {
		return SettlementPlan{}, err
	}
	plan := SettlementPlan{Balances: balances, Transfers: transfers}
	if s.plans != nil {
		s.plans.Set(key, plan)
	}
	return plan, nil
}

func planKey(groupID string) string {
	return "group:" + groupID + ":plan"
}

func (s *GroupService) invalidatePlan(groupID string) {
	if s.plans != nil {
		s.plans.Delete(planKey(groupID))
	}
}

func (s *GroupService) publish(ctx context.Context, kind, entityID string, userID int64, payload any) {
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
	}
}
