package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store with one row per expense instead of a
// single serialized blob. It honors the same contract as JSONStore: GetAll
// masks failures as empty, Update and Delete are silent no-ops for unknown
// ids.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) []core.Expense {
	expenses, err := r.readAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Read expenses failed, treating as empty", "error", err)
		return nil
	}
	return expenses
}

func (r *SQLiteRepository) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	exp := core.Expense{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		SubItems:    draft.SubItems,
	}
	fillSubItemIDs(exp.SubItems)

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		return insertExpense(ctx, tx, exp)
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", exp.ID,
		"amount", exp.Amount,
		"category", exp.Category,
		"date", core.DayKey(exp.Date))
	return exp, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch core.Patch) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := readExpense(ctx, tx, id)
		if err == sql.ErrNoRows {
			slog.DebugContext(ctx, "Update for unknown expense id", "id", id)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read expense %s: %w", id, err)
		}

		merged := patch.Apply(*existing)
		fillSubItemIDs(merged.SubItems)
		if _, err := tx.ExecContext(ctx,
			`UPDATE expenses SET amount = ?, category = ?, description = ?, date = ? WHERE id = ?`,
			merged.Amount, string(merged.Category), merged.Description, merged.Date, id,
		); err != nil {
			return fmt.Errorf("update expense %s: %w", id, err)
		}
		if patch.SubItems == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sub_items WHERE expense_id = ?`, id); err != nil {
			return fmt.Errorf("clear sub-items for %s: %w", id, err)
		}
		return insertSubItems(ctx, tx, id, merged.SubItems)
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sub_items WHERE expense_id = ?`, id); err != nil {
			return fmt.Errorf("delete sub-items for %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete expense %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			slog.DebugContext(ctx, "Delete for unknown expense id", "id", id)
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveAll(ctx context.Context, expenses []core.Expense) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sub_items`); err != nil {
			return fmt.Errorf("clear sub-items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}
		for _, e := range expenses {
			if err := insertExpense(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, e core.Expense) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, string(e.Category), e.Description, e.Date, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}
	return insertSubItems(ctx, tx, e.ID, e.SubItems)
}

func insertSubItems(ctx context.Context, tx *sql.Tx, expenseID string, items []core.SubItem) error {
	for i, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sub_items (id, expense_id, position, name, amount)
			 VALUES (?, ?, ?, ?, ?)`,
			it.ID, expenseID, i, it.Name, it.Amount,
		); err != nil {
			return fmt.Errorf("insert sub-item %s: %w", it.ID, err)
		}
	}
	return nil
}

func readExpense(ctx context.Context, tx *sql.Tx, id string) (*core.Expense, error) {
	var e core.Expense
	var category string
	err := tx.QueryRowContext(ctx,
		`SELECT id, amount, category, description, date, created_at FROM expenses WHERE id = ?`, id,
	).Scan(&e.ID, &e.Amount, &category, &e.Description, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = core.Category(category)

	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, amount FROM sub_items WHERE expense_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("read sub-items for %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var it core.SubItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Amount); err != nil {
			return nil, err
		}
		e.SubItems = append(e.SubItems, it)
	}
	return &e, rows.Err()
}

func (r *SQLiteRepository) readAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, category, description, date, created_at FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var (
		expenses []core.Expense
		index    = map[string]int{}
	)
	for rows.Next() {
		var e core.Expense
		var category string
		if err := rows.Scan(&e.ID, &e.Amount, &category, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Category = core.Category(category)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, id, name, amount FROM sub_items ORDER BY expense_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query sub-items: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var (
			parent string
			it     core.SubItem
		)
		if err := subRows.Scan(&parent, &it.ID, &it.Name, &it.Amount); err != nil {
			return nil, err
		}
		if i, ok := index[parent]; ok {
			expenses[i].SubItems = append(expenses[i].SubItems, it)
		}
	}
	return expenses, subRows.Err()
}
