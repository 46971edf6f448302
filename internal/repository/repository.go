// Package repository implements persistence for the trip ledger over the
// dialect-aware database wrapper. Stores are defined as narrow interfaces
// so services can be tested against fakes without a live database.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// CommitAndReturn marks err as a failure whose transaction work must
// still be committed. InTx commits instead of rolling back and returns
// the wrapped error to the caller. The invitation expiry flip relies on
// this: the EXPIRED status persists even though the accept fails.
func CommitAndReturn(err error) error {
	return &commitRequest{err: err}
}

// CommitRequested reports whether err carries a CommitAndReturn marker
// and returns the wrapped error.
func CommitRequested(err error) (error, bool) {
	if cr, ok := err.(*commitRequest); ok {
		return cr.err, true
	}
	return err, false
}

type commitRequest struct{ err error }

func (e *commitRequest) Error() string { return e.err.Error() }
func (e *commitRequest) Unwrap() error { return e.err }

// btoi converts a bool to its stored 0/1 form. Flags are kept as small
// integers because the three supported engines disagree on boolean
// column scanning.
func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseAmount converts a stored decimal column value into an exact amount.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt amount column %q: %w", s, err)
	}
	return d, nil
}

// nullInt64 converts a nullable column into *int64.
func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// nullString converts a nullable column into *string.
func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
