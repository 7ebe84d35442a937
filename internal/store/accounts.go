package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/passreg/passreg/internal/model"
)

// CreateAccount inserts a new account. The ID, CreatedAt, and UpdatedAt fields
// on acc are populated after a successful insert. Returns ErrDuplicate if the
// username or email is already taken.
func (s *Store) CreateAccount(ctx context.Context, acc *model.Account) error {
	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	const q = `INSERT INTO accounts
		(username, email, password_hash, first_name, last_name, passport_series, passport_number,
		 is_active, is_staff, is_superuser, created_at, updated_at)
		VALUES
		(:username, :email, :password_hash, :first_name, :last_name, :passport_series, :passport_number,
		 :is_active, :is_staff, :is_superuser, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, acc)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get account id: %w", err)
	}
	acc.ID = id
	return nil
}

// GetAccount returns an account by ID.
func (s *Store) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var acc model.Account
	if err := s.db.GetContext(ctx, &acc, "SELECT * FROM accounts WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// GetAccountByUsername returns an account by its unique username.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var acc model.Account
	if err := s.db.GetContext(ctx, &acc, "SELECT * FROM accounts WHERE username = ?", username); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return &acc, nil
}

// GetAccountByPassportData returns the first account carrying the given
// passport series/number pair, optionally excluding one account ID (pass 0 for
// no exclusion). Absence is reported as ErrNotFound, never as a failure.
func (s *Store) GetAccountByPassportData(ctx context.Context, series, number, excludeID int64) (*model.Account, error) {
	q := "SELECT * FROM accounts WHERE passport_series = ? AND passport_number = ?"
	args := []interface{}{series, number}
	if excludeID != 0 {
		q += " AND id != ?"
		args = append(args, excludeID)
	}
	q += " ORDER BY id LIMIT 1"

	var acc model.Account
	if err := s.db.GetContext(ctx, &acc, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by passport data: %w", err)
	}
	return &acc, nil
}

// SearchAccounts returns all accounts matching the filter, ordered by ID.
// An empty filter returns the full set.
func (s *Store) SearchAccounts(ctx context.Context, f model.AccountFilter) ([]model.Account, error) {
	q := "SELECT * FROM accounts"
	conds, args := filterConditions(f.FirstName, f.LastName, f.PassportSeries, f.PassportNumber)
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id"

	accounts := []model.Account{}
	if err := s.db.SelectContext(ctx, &accounts, q, args...); err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an existing account. The UpdatedAt field on acc is
// refreshed automatically. Returns ErrDuplicate if the new username or email
// collides with another account, ErrNotFound if the account no longer exists.
func (s *Store) UpdateAccount(ctx context.Context, acc *model.Account) error {
	acc.UpdatedAt = time.Now().UTC()

	const q = `UPDATE accounts SET
		username = :username, email = :email, password_hash = :password_hash,
		first_name = :first_name, last_name = :last_name,
		passport_series = :passport_series, passport_number = :passport_number,
		is_active = :is_active, is_staff = :is_staff, is_superuser = :is_superuser,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, acc)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account by ID. Returns ErrNotFound if no account
// with that ID exists; deletion of a missing account is never a failure
// beyond that.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasAnySuperuser reports whether at least one superuser account exists. Used
// for first-run detection at serve time.
func (s *Store) HasAnySuperuser(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM accounts WHERE is_superuser = 1"); err != nil {
		return false, fmt.Errorf("count superusers: %w", err)
	}
	return count > 0, nil
}

// ListAccounts returns all accounts ordered by username.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts := []model.Account{}
	if err := s.db.SelectContext(ctx, &accounts, "SELECT * FROM accounts ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// filterConditions builds the shared WHERE fragments for account and passport
// searches: case-insensitive substring match on names, exact match on the
// passport pair.
func filterConditions(firstName, lastName string, series, number *int64) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if firstName != "" {
		conds = append(conds, "LOWER(first_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(firstName)+"%")
	}
	if lastName != "" {
		conds = append(conds, "LOWER(last_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(lastName)+"%")
	}
	if series != nil {
		conds = append(conds, "passport_series = ?")
		args = append(args, *series)
	}
	if number != nil {
		conds = append(conds, "passport_number = ?")
		args = append(args, *number)
	}
	return conds, args
}
