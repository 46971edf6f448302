package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tripledger/internal/database"
	"tripledger/internal/models"
	"tripledger/internal/money"
)

// ExpenseRepository handles database operations for expenses
type ExpenseRepository struct {
	db *database.DB
}

var _ ExpenseStore = (*ExpenseRepository)(nil)

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = "id, trip_id, description, amount, is_income, payer_member_id, is_paid_from_fund, created_by, created_at"

func scanExpense(scan func(dest ...interface{}) error) (*models.Expense, error) {
	var e models.Expense
	var amount string
	var isIncome, fromFund int

	err := scan(&e.ID, &e.TripID, &e.Description, &amount, &isIncome,
		&e.PayerMemberID, &fromFund, &e.CreatedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	e.IsIncome = isIncome != 0
	e.IsPaidFromFund = fromFund != 0
	e.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts the expense and its participant shares in one transaction
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO expenses (trip_id, description, amount, is_income, payer_member_id, is_paid_from_fund, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := tx.ExecReturningID(ctx, query, expense.TripID, expense.Description,
		money.Format(expense.Amount), btoi(expense.IsIncome), expense.PayerMemberID,
		btoi(expense.IsPaidFromFund), expense.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	expense.ID = id

	for i := range expense.Participants {
		p := &expense.Participants[i]
		p.ExpenseID = id
		_, err := tx.Exec(ctx,
			"INSERT INTO expense_participants (expense_id, trip_member_id, share_amount) VALUES (?, ?, ?)",
			p.ExpenseID, p.TripMemberID, money.Format(p.ShareAmount))
		if err != nil {
			return fmt.Errorf("failed to create expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ByID retrieves an expense with its participants loaded
func (r *ExpenseRepository) ByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE id = ?"
	expense, err := scanExpense(r.db.QueryRow(ctx, query, id).Scan)
	if err != nil || expense == nil {
		return expense, err
	}

	expense.Participants, err = r.participantsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ForTrip retrieves all expenses of a trip with participants loaded,
// oldest first
func (r *ExpenseRepository) ForTrip(ctx context.Context, tripID int64) ([]models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE trip_id = ? ORDER BY created_at, id"
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	byID := make(map[int64]int)
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[e.ID] = len(expenses)
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	// One pass over all participant rows of the trip instead of a
	// query per expense.
	pq := `SELECT ep.expense_id, ep.trip_member_id, ep.share_amount
		FROM expense_participants ep
		JOIN expenses e ON e.id = ep.expense_id
		WHERE e.trip_id = ?
		ORDER BY ep.expense_id, ep.trip_member_id`
	prows, err := r.db.Query(ctx, pq, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var p models.ExpenseParticipant
		var share string
		if err := prows.Scan(&p.ExpenseID, &p.TripMemberID, &share); err != nil {
			return nil, fmt.Errorf("failed to scan expense participant: %w", err)
		}
		if p.ShareAmount, err = parseAmount(share); err != nil {
			return nil, err
		}
		if idx, ok := byID[p.ExpenseID]; ok {
			expenses[idx].Participants = append(expenses[idx].Participants, p)
		}
	}
	return expenses, prows.Err()
}

func (r *ExpenseRepository) participantsFor(ctx context.Context, expenseID int64) ([]models.ExpenseParticipant, error) {
	query := `SELECT expense_id, trip_member_id, share_amount FROM expense_participants
		WHERE expense_id = ? ORDER BY trip_member_id`
	rows, err := r.db.Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense participants: %w", err)
	}
	defer rows.Close()

	var participants []models.ExpenseParticipant
	for rows.Next() {
		var p models.ExpenseParticipant
		var share string
		if err := rows.Scan(&p.ExpenseID, &p.TripMemberID, &share); err != nil {
			return nil, fmt.Errorf("failed to scan expense participant: %w", err)
		}
		if p.ShareAmount, err = parseAmount(share); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// Delete removes an expense. Participant rows go with it via cascade.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
