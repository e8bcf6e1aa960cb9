package validate

import (
	"errors"
	"strings"
	"testing"

	"devconnect/internal/errs"
)

func TestSanitize(t *testing.T) {
	if got := Sanitize("<script>alert(1)</script>"); got != "scriptalert(1)/script" {
		t.Errorf("unexpected sanitized value %q", got)
	}
	if got := Sanitize("plain & simple"); got != "plain & simple" {
		t.Errorf("sanitize should only strip angle brackets, got %q", got)
	}
}

func TestRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "alice_1", "alice@example.com", "secret1", false},
		{"missing field", "alice", "", "secret1", true},
		{"short username", "al", "alice@example.com", "secret1", true},
		{"long username", strings.Repeat("a", 31), "alice@example.com", "secret1", true},
		{"bad username chars", "alice!", "alice@example.com", "secret1", true},
		{"bad email", "alice", "alice@example", "secret1", true},
		{"short password", "alice", "alice@example.com", "12345", true},
		{"72 byte password", "alice", "alice@example.com", strings.Repeat("a", 72), false},
		{"password over 72 bytes", "alice", "alice@example.com", strings.Repeat("a", 73), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Registration(tt.username, tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, errs.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGig(t *testing.T) {
	if err := Gig(GigInput{Title: "Build API", Budget: "$1,000 - 2,000", Deadline: "2026-12-01"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := Gig(GigInput{Title: " a ", Description: strings.Repeat("x", 5001), Budget: "ten bucks", Deadline: "soon"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(verr.Problems) != 4 {
		t.Errorf("expected 4 problems, got %v", verr.Problems)
	}
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput")
	}

	if err := Gig(GigInput{Title: strings.Repeat("t", 201)}); err == nil {
		t.Errorf("expected error for long title")
	}
}

func TestMessageAndComment(t *testing.T) {
	if Message("hello") != nil || Comment("hello") != nil {
		t.Errorf("expected valid text")
	}
	if Message("   ") == nil || Comment("") == nil {
		t.Errorf("expected error for empty text")
	}
	if Message(strings.Repeat("m", 2001)) == nil {
		t.Errorf("expected error for long message")
	}
	if Message(strings.Repeat("m", 2000)) != nil {
		t.Errorf("2000 chars should be accepted")
	}
	if Comment(strings.Repeat("c", 1001)) == nil {
		t.Errorf("expected error for long comment")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, limit                      string
		wantPage, wantLimit, wantOffset int
	}{
		{"", "", 1, 20, 0},
		{"3", "10", 3, 10, 20},
		{"0", "-5", 1, 20, 0},
		{"abc", "500", 1, 100, 0},
		{"2", "100", 2, 100, 100},
		{"9223372036854775807", "100", MaxPage, 100, (MaxPage - 1) * 100},
	}
	for _, tt := range tests {
		p, l, o := Pagination(tt.page, tt.limit)
		if o < 0 {
			t.Errorf("Pagination(%q, %q) offset overflowed: %d", tt.page, tt.limit, o)
		}
		if p != tt.wantPage || l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("Pagination(%q, %q) = %d, %d, %d", tt.page, tt.limit, p, l, o)
		}
	}
}
