package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrInvalidCSRF, http.StatusForbidden},
		{ErrBanned, http.StatusForbidden},
		{ErrConflict, http.StatusConflict},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("user 7: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestPublic(t *testing.T) {
	if !Public(ErrConflict) {
		t.Errorf("conflict should be public")
	}
	if Public(errors.New("sql: connection refused")) {
		t.Errorf("internal errors must not be public")
	}
}

func TestFromStore(t *testing.T) {
	if FromStore(nil, "user") != nil {
		t.Errorf("nil should stay nil")
	}
	if err := FromStore(gorm.ErrRecordNotFound, "user 3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := FromStore(gorm.ErrDuplicatedKey, "user"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := FromStore(errors.New("UNIQUE constraint failed: users.username"), "user"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for sqlite message, got %v", err)
	}
	raw := errors.New("disk I/O error")
	if err := FromStore(raw, "user"); !errors.Is(err, raw) || Public(err) {
		t.Errorf("unexpected translation of internal error: %v", err)
	}
}
