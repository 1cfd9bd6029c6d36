package services

import (
	"strings"

	"github.com/isdelr/itemdesk-be/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s so that every character of s is
// matched literally under `ESCAPE '\'`.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// containsPattern builds a literal substring pattern for term. Case folding
// happens in SQL so the term and the column are folded by the same function.
func containsPattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}

// containsClause matches rows where any of columns contains the bound pattern,
// ignoring case. It consumes one argument per column.
func containsClause(lower func(string) string, columns ...string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, lower(col)+` LIKE `+lower("?")+` ESCAPE '\'`)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// ListParams are the raw paging and search inputs of an item listing.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// normalize clamps the page to >= 1 and the page size to [1, MaxPageSize].
// A zero limit means "not given".
func (p ListParams) normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultPageSize
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// paginate clamps the requested page to the last page that exists for total
// matching rows. There is always at least one page.
func paginate(page, limit int, total int64) models.Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return models.Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages}
}

// itemScope is the WHERE clause restricting items to what a caller may see,
// narrowed by an optional search term.
type itemScope struct {
	clauses []string
	args    []any
}

func newItemScope(lower func(string) string, ownerID, search string) itemScope {
	var s itemScope
	if ownerID != "" {
		s.clauses = append(s.clauses, "i.owner_id = ?")
		s.args = append(s.args, ownerID)
	}
	if search != "" {
		pattern := containsPattern(search)
		s.clauses = append(s.clauses, containsClause(lower, "i.title", "i.description"))
		s.args = append(s.args, pattern, pattern)
	}
	return s
}

func (s itemScope) where() string {
	if len(s.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.clauses, " AND ")
}
