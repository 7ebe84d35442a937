package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/passreg/passreg/internal/model"
)

// CreatePassport inserts a new passport record. The ID and CreatedAt fields on
// p are populated after a successful insert. Returns ErrDuplicate when the
// (series, number) pair already exists; the UNIQUE constraint backstops the
// handler's lookup-before-write check against concurrent writers.
func (s *Store) CreatePassport(ctx context.Context, p *model.Passport) error {
	p.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO passports
		(first_name, last_name, passport_series, passport_number, created_at)
		VALUES
		(:first_name, :last_name, :passport_series, :passport_number, :created_at)`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert passport: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get passport id: %w", err)
	}
	p.ID = id
	return nil
}

// GetPassport returns a passport record by ID.
func (s *Store) GetPassport(ctx context.Context, id int64) (*model.Passport, error) {
	var p model.Passport
	if err := s.db.GetContext(ctx, &p, "SELECT * FROM passports WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get passport: %w", err)
	}
	return &p, nil
}

// GetPassportByPassportData returns the first record with the given
// series/number pair, optionally excluding one record ID (pass 0 for no
// exclusion; the exclusion is used for update-uniqueness checks). Absence is
// reported as ErrNotFound, never as a failure.
func (s *Store) GetPassportByPassportData(ctx context.Context, series, number, excludeID int64) (*model.Passport, error) {
	q := "SELECT * FROM passports WHERE passport_series = ? AND passport_number = ?"
	args := []interface{}{series, number}
	if excludeID != 0 {
		q += " AND id != ?"
		args = append(args, excludeID)
	}
	q += " ORDER BY id LIMIT 1"

	var p model.Passport
	if err := s.db.GetContext(ctx, &p, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get passport by passport data: %w", err)
	}
	return &p, nil
}

// SearchPassports returns all passport records matching the filter, ordered by
// ID. An empty filter returns the full set.
func (s *Store) SearchPassports(ctx context.Context, f model.PassportFilter) ([]model.Passport, error) {
	q := "SELECT * FROM passports"
	conds, args := filterConditions(f.FirstName, f.LastName, f.PassportSeries, f.PassportNumber)
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id"

	passports := []model.Passport{}
	if err := s.db.SelectContext(ctx, &passports, q, args...); err != nil {
		return nil, fmt.Errorf("search passports: %w", err)
	}
	return passports, nil
}

// UpdatePassport updates an existing passport record. Returns ErrDuplicate if
// the new series/number pair collides with another record, ErrNotFound if the
// record no longer exists.
func (s *Store) UpdatePassport(ctx context.Context, p *model.Passport) error {
	const q = `UPDATE passports SET
		first_name = :first_name, last_name = :last_name,
		passport_series = :passport_series, passport_number = :passport_number
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update passport: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update passport rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePassport removes a passport record by ID. Returns ErrNotFound if no
// record with that ID exists.
func (s *Store) DeletePassport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM passports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete passport: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete passport rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
