package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/docsort/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	check := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, errNotFound},
		{"other pg error", check, check},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type fakeRows struct {
	values  []int
	pos     int
	scanErr error
	iterErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	*dest[0].(*int) = r.values[r.pos-1]
	return nil
}

func (r *fakeRows) Err() error { return r.iterErr }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func scanInt(s repository.Scanner) (int, error) {
	var n int
	err := s.Scan(&n)
	return n, err
}

func TestCollect(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		rows    *fakeRows
		want    []int
		wantErr error
	}{
		{"rows", &fakeRows{values: []int{3, 1, 2}}, []int{3, 1, 2}, nil},
		{"empty", &fakeRows{}, []int{}, nil},
		{"scan error", &fakeRows{values: []int{1}, scanErr: boom}, nil, boom},
		{"iteration error", &fakeRows{values: []int{1}, iterErr: boom}, []int{1}, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repository.Collect(tt.rows, scanInt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !tt.rows.closed {
				t.Error("rows not closed")
			}
			if tt.want != nil && fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if tt.want != nil && got == nil {
				t.Error("want non-nil slice")
			}
		})
	}
}
