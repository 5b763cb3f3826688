package fastorder

import (
	"regexp"
	"sort"
	"strconv"
)

// Default form field naming used by the storefront form
const (
	DefaultPrefix       = "fast-order-"
	DefaultArticleRole  = "article-"
	DefaultQuantityRole = "qtty-"
)

// Role is the part a field plays inside a field set
type Role int

const (
	RoleArticle Role = iota
	RoleQuantity
)

// Schema describes how the fields of the bulk order form are named:
// prefix + role + index, e.g. "fast-order-article-0" and "fast-order-qtty-0".
type Schema struct {
	Prefix       string
	ArticleRole  string
	QuantityRole string

	pattern *regexp.Regexp
}

// NewSchema creates a schema for the given naming parts
func NewSchema(prefix, articleRole, quantityRole string) *Schema {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) +
		"(" + regexp.QuoteMeta(articleRole) + "|" + regexp.QuoteMeta(quantityRole) + `)(\d+)$`)

	return &Schema{
		Prefix:       prefix,
		ArticleRole:  articleRole,
		QuantityRole: quantityRole,
		pattern:      pattern,
	}
}

// DefaultSchema returns the schema of the storefront form
func DefaultSchema() *Schema {
	return NewSchema(DefaultPrefix, DefaultArticleRole, DefaultQuantityRole)
}

// ArticleField returns the article number field name for index i
func (s *Schema) ArticleField(i int) string {
	return s.Prefix + s.ArticleRole + strconv.Itoa(i)
}

// QuantityField returns the quantity field name for index i
func (s *Schema) QuantityField(i int) string {
	return s.Prefix + s.QuantityRole + strconv.Itoa(i)
}

// Parse extracts role and index from a field name.
// Only canonical indices match, so "article-01" is not read as index 1.
func (s *Schema) Parse(field string) (Role, int, bool) {
	m := s.pattern.FindStringSubmatch(field)
	if m == nil {
		return 0, 0, false
	}

	index, err := strconv.Atoi(m[2])
	if err != nil || strconv.Itoa(index) != m[2] {
		return 0, 0, false
	}

	role := RoleQuantity
	if m[1] == s.ArticleRole {
		role = RoleArticle
	}
	return role, index, true
}

// FieldSetIndices returns the ascending indices of all submitted article fields.
// The row count is taken from the submitted keys, there is no fixed upper bound.
func (s *Schema) FieldSetIndices(data map[string]string) []int {
	indices := make([]int, 0, len(data)/2)
	for field := range data {
		role, index, ok := s.Parse(field)
		if !ok || role != RoleArticle {
			continue
		}
		indices = append(indices, index)
	}

	sort.Ints(indices)
	return indices
}
