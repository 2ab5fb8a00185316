// Package view narrows the consolidated submission set for display: status
// selection, free-text search and pagination.
package view

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/codehub/models"
)

// DefaultPageSize is the number of submissions shown per page.
const DefaultPageSize = models.DefaultPageSize

// Query describes one view of the submission set.
type Query struct {
	Statuses []models.StatusCode // empty = all
	Search   string
	Page     int // 1-based
	PageSize int // 0 = DefaultPageSize
}

// Result is one page of filtered submissions.
type Result struct {
	Items    []models.Submission `json:"items" yaml:"items"`
	Total    int                 `json:"total" yaml:"total"`
	Page     int                 `json:"page" yaml:"page"`
	PageSize int                 `json:"page_size" yaml:"page_size"`
	MaxPage  int                 `json:"max_page" yaml:"max_page"`
}

// StatusChoices lists the accepted status selectors in display order.
func StatusChoices() string {
	codes := models.AllStatusCodes()
	aliases := make([]string, len(codes))
	for i, code := range codes {
		aliases[i] = code.Alias()
	}
	return strings.Join(aliases, ", ")
}

// ParseStatuses parses a comma-separated status selection such as
// "accepted,wrong". An empty string selects every status.
func ParseStatuses(s string) ([]models.StatusCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var codes []models.StatusCode
	seen := make(map[models.StatusCode]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		code, err := models.ParseStatusCode(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status filter (choose from %s): %w", StatusChoices(), err)
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// StatusFilter keeps submissions whose status is selected. An empty
// selection keeps everything.
func StatusFilter(subs []models.Submission, selected []models.StatusCode) []models.Submission {
	if len(selected) == 0 {
		return subs
	}

	want := make(map[models.StatusCode]bool, len(selected))
	for _, code := range selected {
		want[code] = true
	}

	out := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		if want[s.StatusCode] {
			out = append(out, s)
		}
	}
	return out
}

// SearchFilter keeps submissions whose title, language or level contains
// query, ignoring case and surrounding whitespace.
func SearchFilter(subs []models.Submission, query string) []models.Submission {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return subs
	}

	out := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		if matches(s, needle) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s models.Submission, needle string) bool {
	for _, field := range []string{s.Title, s.Language, string(s.Metadata.Level)} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Paginate returns the 1-based page of subs. Pages out of range are empty.
func Paginate(subs []models.Submission, pageSize, page int) []models.Submission {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	// Bound page before multiplying so huge values cannot overflow
	if page < 1 || page-1 >= MaxPage(len(subs), pageSize) {
		return []models.Submission{}
	}

	start := (page - 1) * pageSize
	end := len(subs)
	if len(subs)-start > pageSize {
		end = start + pageSize
	}
	return subs[start:end]
}

// MaxPage is the number of pages needed to show total items.
func MaxPage(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Apply runs the status filter, then search, then pagination.
func Apply(subs []models.Submission, q Query) Result {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}

	filtered := SearchFilter(StatusFilter(subs, q.Statuses), q.Search)

	return Result{
		Items:    Paginate(filtered, q.PageSize, q.Page),
		Total:    len(filtered),
		Page:     q.Page,
		PageSize: q.PageSize,
		MaxPage:  MaxPage(len(filtered), q.PageSize),
	}
}
