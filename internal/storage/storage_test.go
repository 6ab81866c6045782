package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *Repository) int64 {
	t.Helper()
	u := &core.User{Email: "mario@example.com", Name: "Mario", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u.ID
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := &core.User{Email: "anna@example.com", Name: "Anna", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := repo.GetUserByEmail(ctx, "anna@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.Name != "Anna" || got.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, &core.User{Email: "a@b.c", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := repo.CreateUser(ctx, &core.User{Email: "a@b.c", PasswordHash: "y"}); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	tx := &core.Transaction{
		Kind:     core.Expense,
		Amount:   core.Money{Cents: 1250},
		Category: "food",
		Note:     "groceries",
		Date:     mustDate(t, "2026-08-10"),
	}
	if err := repo.CreateTransaction(ctx, userID, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := repo.GetTransaction(ctx, userID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 1250 || got.Category != "food" || got.Date.String() != "2026-08-10" {
		t.Errorf("unexpected transaction: %+v", got)
	}

	got.Note = "weekly groceries"
	got.Amount.Cents = 1300
	if err := repo.UpdateTransaction(ctx, userID, *got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err = repo.GetTransaction(ctx, userID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction after update: %v", err)
	}
	if got.Note != "weekly groceries" || got.Amount.Cents != 1300 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, userID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, userID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, userID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTransactionUserScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	other := &core.User{Email: "other@example.com", PasswordHash: "x"}
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	tx := &core.Transaction{
		Kind: core.Income, Amount: core.Money{Cents: 100},
		Category: "salary", Date: mustDate(t, "2026-08-01"),
	}
	if err := repo.CreateTransaction(ctx, userID, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := repo.GetTransaction(ctx, other.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign transaction, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, other.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting foreign transaction, got %v", err)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	seed := []core.Transaction{
		{Kind: core.Income, Amount: core.Money{Cents: 200000}, Category: "salary", Note: "august pay", Date: mustDate(t, "2026-08-01")},
		{Kind: core.Expense, Amount: core.Money{Cents: 4500}, Category: "food", Note: "dinner out", Date: mustDate(t, "2026-08-05")},
		{Kind: core.Expense, Amount: core.Money{Cents: 80000}, Category: "rent", Note: "", Date: mustDate(t, "2026-08-02")},
		{Kind: core.Expense, Amount: core.Money{Cents: 1200}, Category: "food", Note: "lunch", Date: mustDate(t, "2026-07-20")},
	}
	for i := range seed {
		if err := repo.CreateTransaction(ctx, userID, &seed[i]); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   int
	}{
		{"all", TransactionFilter{}, 4},
		{"kind", TransactionFilter{Kind: core.Expense}, 3},
		{"category", TransactionFilter{Category: "food"}, 2},
		{"date range", TransactionFilter{From: mustDate(t, "2026-08-01"), To: mustDate(t, "2026-08-31")}, 3},
		{"search", TransactionFilter{Search: "lunch"}, 1},
		{"combined", TransactionFilter{Kind: core.Expense, Category: "food", From: mustDate(t, "2026-08-01")}, 1},
		{"no match", TransactionFilter{Category: "travel"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListTransactions(ctx, userID, tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d transactions, want %d", len(got), tt.want)
			}
		})
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, userID, TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Date.String() < got[i].Date.String() {
				t.Errorf("not ordered newest first: %s before %s", got[i-1].Date, got[i].Date)
			}
		}
	})
}

func TestBudgetCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	b := &core.Budget{Category: "food", Limit: core.Money{Cents: 30000}, Month: "2026-08"}
	if err := repo.CreateBudget(ctx, userID, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	dup := &core.Budget{Category: "food", Limit: core.Money{Cents: 40000}, Month: "2026-08"}
	if err := repo.CreateBudget(ctx, userID, dup); err == nil {
		t.Error("expected unique constraint on category+month")
	}

	budgets, err := repo.ListBudgets(ctx, userID, "2026-08")
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Limit.Cents != 30000 {
		t.Errorf("unexpected budgets: %+v", budgets)
	}

	b.Limit.Cents = 35000
	if err := repo.UpdateBudget(ctx, userID, *b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, userID, b.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, userID, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	g := &core.Group{
		ID:   uuid.NewString(),
		Name: "ski trip",
		Members: []core.Member{
			{ID: uuid.NewString(), Name: "Anna"},
			{ID: uuid.NewString(), Name: "Bruno"},
		},
	}
	if err := repo.CreateGroup(ctx, userID, g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	got, err := repo.GetGroup(ctx, userID, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if got.Name != "ski trip" || len(got.Members) != 2 {
		t.Fatalf("unexpected group: %+v", got)
	}
	if got.Members[0].Name != "Anna" || got.Members[1].Name != "Bruno" {
		t.Errorf("membership order lost: %+v", got.Members)
	}

	carla := core.Member{ID: uuid.NewString(), Name: "Carla"}
	if err := repo.AddMember(ctx, g.ID, carla); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	got, err = repo.GetGroup(ctx, userID, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(got.Members) != 3 || got.Members[2].Name != "Carla" {
		t.Errorf("new member not appended: %+v", got.Members)
	}

	if _, err := repo.GetGroup(ctx, userID+1, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign group, got %v", err)
	}
}

func TestGroupExpensesAndSettlements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := newTestUser(t, repo)

	anna := core.Member{ID: uuid.NewString(), Name: "Anna"}
	bruno := core.Member{ID: uuid.NewString(), Name: "Bruno"}
	g := &core.Group{ID: uuid.NewString(), Name: "flat", Members: []core.Member{anna, bruno}}
	if err := repo.CreateGroup(ctx, userID, g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	equal := &core.GroupExpense{
		ID: uuid.NewString(), GroupID: g.ID,
		Description: "groceries", PayerID: anna.ID,
		Amount: core.Money{Cents: 3001},
		Date:   mustDate(t, "2026-08-03"),
		Split:  core.EqualSplit(),
	}
	if err := repo.CreateGroupExpense(ctx, equal, map[string]int64{anna.ID: 1501, bruno.ID: 1500}); err != nil {
		t.Fatalf("CreateGroupExpense(equal): %v", err)
	}

	custom := &core.GroupExpense{
		ID: uuid.NewString(), GroupID: g.ID,
		Description: "cinema", PayerID: bruno.ID,
		Amount: core.Money{Cents: 2000},
		Date:   mustDate(t, "2026-08-04"),
		Split:  core.CustomSplit(map[string]int64{anna.ID: 500, bruno.ID: 1500}),
	}
	if err := repo.CreateGroupExpense(ctx, custom, custom.Split.Shares); err != nil {
		t.Fatalf("CreateGroupExpense(custom): %v", err)
	}

	expenses, err := repo.ListGroupExpenses(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListGroupExpenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(expenses))
	}
	if expenses[0].Description != "groceries" || expenses[1].Description != "cinema" {
		t.Errorf("expenses out of order: %+v", expenses)
	}
	if expenses[0].Split.Mode != core.SplitEqual {
		t.Errorf("equal split mode lost: %+v", expenses[0].Split)
	}
	if expenses[1].Split.Mode != core.SplitCustom || expenses[1].Split.Shares[anna.ID] != 500 {
		t.Errorf("custom shares lost: %+v", expenses[1].Split)
	}

	s := &core.Settlement{
		ID: uuid.NewString(), GroupID: g.ID,
		FromID: bruno.ID, ToID: anna.ID,
		Amount: core.Money{Cents: 1000},
		Date:   mustDate(t, "2026-08-10"),
		Note:   "cash",
	}
	if err := repo.CreateSettlement(ctx, s); err != nil {
		t.Fatalf("CreateSettlement: %v", err)
	}
	settlements, err := repo.ListSettlements(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListSettlements: %v", err)
	}
	if len(settlements) != 1 || settlements[0].FromID != bruno.ID || settlements[0].Amount.Cents != 1000 {
		t.Errorf("unexpected settlements: %+v", settlements)
	}
}

func TestEventArchive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	occurred := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	if err := repo.InsertEvent(ctx, "transaction.created", "42", 7, `{"id":42}`, occurred); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	if err := repo.InsertEvent(ctx, "group.created", "abc", 0, `{}`, occurred); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	n, err := repo.CountEvents(ctx, "transaction.created")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d events, want 1", n)
	}
	n, err = repo.CountEvents(ctx, "")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}
