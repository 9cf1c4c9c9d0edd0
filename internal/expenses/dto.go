package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famlyhq/famly-backend/pkg/db/models"
)

// DateLayout is the wire format for expense dates.
const DateLayout = "2006-01-02"

// ExpenseDTO is the transport shape for an expense.
type ExpenseDTO struct {
	ID          uuid.UUID       `json:"id"`
	FamilyID    uuid.UUID       `json:"family_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	Date        string          `json:"date"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryTotal aggregates spend for one category. Share is the category's
// percentage of the period total, rounded to two decimal places.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Share    decimal.Decimal `json:"share"`
}

// SummaryDTO reports a period's total spend broken down by category.
// Category totals always sum to the grand total.
type SummaryDTO struct {
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// CreateExpenseDTO holds the data required by the repo to persist a new expense.
type CreateExpenseDTO struct {
	FamilyID    uuid.UUID
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        time.Time
	PaidBy      uuid.UUID
}

func FromModel(e *models.Expense) *ExpenseDTO {
	if e == nil {
		return nil
	}

	return &ExpenseDTO{
		ID:          e.ID,
		FamilyID:    e.FamilyID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(DateLayout),
		PaidBy:      e.PaidBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (c CreateExpenseDTO) ToModel() *models.Expense {
	return &models.Expense{
		FamilyID:    c.FamilyID,
		Amount:      c.Amount,
		Category:    c.Category,
		Description: c.Description,
		Date:        c.Date,
		PaidBy:      c.PaidBy,
	}
}
