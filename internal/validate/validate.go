// Package validate sanitizes and checks user input before it reaches a store.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"devconnect/internal/errs"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	budgetRe   = regexp.MustCompile(`^[\d\s\-+$,.]+$`)

	sanitizer = strings.NewReplacer("<", "", ">", "")
)

const (
	MinPasswordLen = 6
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
	DefaultLimit     = 20
	MaxLimit         = 100
	// MaxPage keeps (page-1)*limit from overflowing.
	MaxPage = math.MaxInt / MaxLimit
)

// Error lists every problem found in one input. It matches errs.ErrInvalidInput.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *Error) Is(target error) bool {
	return target == errs.ErrInvalidInput
}

func result(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{Problems: problems}
}

func invalid(problem string) error {
	return &Error{Problems: []string{problem}}
}

// Sanitize strips angle brackets.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

func Username(s string) bool { return usernameRe.MatchString(s) }

func Email(s string) bool { return emailRe.MatchString(s) }

func Registration(username, email, password string) error {
	switch {
	case username == "" || email == "" || password == "":
		return invalid("All fields required")
	case !Username(username):
		return invalid("Invalid username (3-30 chars, alphanumeric/underscore)")
	case !Email(email):
		return invalid("Invalid email")
	case utf8.RuneCountInString(password) < MinPasswordLen:
		return invalid("Password must be at least 6 characters")
	case len(password) > MaxPasswordBytes:
		return invalid("Password must be at most 72 bytes")
	}
	return nil
}

type GigInput struct {
	Title       string
	Description string
	Budget      string
	Deadline    string
}

func Gig(in GigInput) error {
	var problems []string
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < 3 {
		problems = append(problems, "Title must be at least 3 characters")
	}
	if utf8.RuneCountInString(in.Title) > 200 {
		problems = append(problems, "Title too long (max 200)")
	}
	if utf8.RuneCountInString(in.Description) > 5000 {
		problems = append(problems, "Description too long (max 5000)")
	}
	if in.Budget != "" && !budgetRe.MatchString(in.Budget) {
		problems = append(problems, "Budget contains invalid characters")
	}
	if in.Deadline != "" && !isDate(in.Deadline) {
		problems = append(problems, "Invalid deadline format")
	}
	return result(problems)
}

func Message(text string) error {
	if strings.TrimSpace(text) == "" {
		return invalid("Message cannot be empty")
	}
	if utf8.RuneCountInString(text) > 2000 {
		return invalid("Message too long (max 2000)")
	}
	return nil
}

func Comment(text string) error {
	if strings.TrimSpace(text) == "" {
		return invalid("Comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > 1000 {
		return invalid("Comment too long (max 1000)")
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Pagination turns raw page and limit query values into page, limit and offset.
// Missing or unparsable values fall back to page 1 and DefaultLimit; the limit
// is capped at MaxLimit and the page at MaxPage.
func Pagination(rawPage, rawLimit string) (page, limit, offset int) {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, err = strconv.Atoi(rawLimit)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}
