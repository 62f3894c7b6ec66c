package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// sliceRows serves fixed rows, assigning each value to the matching
// destination pointer.
type sliceRows struct {
	testRowsBase
	rows [][]any
	idx  int
	err  error
}

func (r *sliceRows) Close() {}

func (r *sliceRows) Err() error { return r.err }

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx-1], dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		if v == nil {
			target.Elem().Set(reflect.Zero(target.Elem().Type()))
			continue
		}
		target.Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type call struct {
	query string
	args  []any
}

// fakeDB records every statement and answers from queued results.
type fakeDB struct {
	calls    []call
	rows     [][]any
	rowErr   error
	listRows [][]any
	affected int64
	execErr  error
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", f.affected)), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.rowErr != nil {
		err := f.rowErr
		return simpleRow{scan: func(dest ...any) error { return err }}
	}
	if len(f.rows) == 0 {
		return simpleRow{}
	}
	next := f.rows[0]
	f.rows = f.rows[1:]
	return simpleRow{scan: func(dest ...any) error { return assign(next, dest) }}
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	return &sliceRows{rows: f.listRows}, nil
}
