package expenses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type expenseRepository interface {
	Create(ctx context.Context, dto CreateExpenseDTO) (*models.Expense, error)
	FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Expense, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID, from, to *time.Time) ([]models.Expense, error)
	Save(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, familyID, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes expense operations.
type Service interface {
	List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]ExpenseDTO, error)
	Create(ctx context.Context, userID, familyID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error)
	Update(ctx context.Context, userID, familyID, expenseID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error)
	Delete(ctx context.Context, userID, familyID, expenseID uuid.UUID) error
	Summary(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) (*SummaryDTO, error)
}

type service struct {
	repo        expenseRepository
	memberships membershipsRepository
}

// NewService builds an expense service with the provided repositories.
func NewService(repo expenseRepository, membershipsRepo membershipsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{repo: repo, memberships: membershipsRepo}, nil
}

// ExpenseInput is the full write shape for an expense.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        string
	PaidBy      *uuid.UUID
}

func (s *service) List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]ExpenseDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByFamily(ctx, familyID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	out := make([]ExpenseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, userID, familyID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	fields, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	paidBy := userID
	if input.PaidBy != nil {
		paidBy = *input.PaidBy
	}

	expense, err := s.repo.Create(ctx, CreateExpenseDTO{
		FamilyID:    familyID,
		Amount:      input.Amount,
		Category:    fields.category,
		Description: input.Description,
		Date:        fields.date,
		PaidBy:      paidBy,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return FromModel(expense), nil
}

func (s *service) Update(ctx context.Context, userID, familyID, expenseID uuid.UUID, input ExpenseInput) (*ExpenseDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	fields, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	expense, err := s.loadExpense(ctx, familyID, expenseID)
	if err != nil {
		return nil, err
	}

	expense.Amount = input.Amount
	expense.Category = fields.category
	expense.Description = input.Description
	expense.Date = fields.date
	if input.PaidBy != nil {
		expense.PaidBy = *input.PaidBy
	}

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save expense")
	}
	return FromModel(expense), nil
}

func (s *service) Delete(ctx context.Context, userID, familyID, expenseID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return err
	}

	if _, err := s.loadExpense(ctx, familyID, expenseID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, familyID, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

// Summary aggregates the period's spend by category. Decimal arithmetic keeps
// the category totals summing exactly to the grand total.
func (s *service) Summary(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) (*SummaryDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByFamily(ctx, familyID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	for i := range rows {
		total = total.Add(rows[i].Amount)
		byCategory[rows[i].Category] = byCategory[rows[i].Category].Add(rows[i].Amount)
	}

	hundred := decimal.NewFromInt(100)
	categories := make([]CategoryTotal, 0, len(byCategory))
	for category, amount := range byCategory {
		share := decimal.Zero
		if total.IsPositive() {
			share = amount.Mul(hundred).DivRound(total, 2)
		}
		categories = append(categories, CategoryTotal{Category: category, Total: amount, Share: share})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Total.Equal(categories[j].Total) {
			return categories[i].Total.GreaterThan(categories[j].Total)
		}
		return categories[i].Category < categories[j].Category
	})

	return &SummaryDTO{Total: total, Categories: categories}, nil
}

type validatedFields struct {
	category string
	date     time.Time
}

func validateInput(input ExpenseInput) (*validatedFields, error) {
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	date, err := time.ParseInLocation(DateLayout, input.Date, time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
	}

	return &validatedFields{category: category, date: date}, nil
}

func (s *service) loadExpense(ctx context.Context, familyID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, familyID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) requireRole(ctx context.Context, userID, familyID uuid.UUID, minRole enums.FamilyRole) error {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(minRole) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return nil
}
