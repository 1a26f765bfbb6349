// Package utils holds helpers shared by the HTTP and CLI surfaces.
package utils

import (
	"regexp"
	"strings"

	"github.com/golammostafa13/chartstudio/errors"
)

// forbiddenKeywords are statements that write to or reshape the database.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "UPDATE", "ALTER", "TRUNCATE",
	"INSERT", "CREATE", "GRANT", "REVOKE", "MERGE", "COPY", "CALL",
}

// readOnlyLeads are the keywords a query may start with.
var readOnlyLeads = []string{"SELECT", "WITH", "VALUES", "TABLE", "SHOW", "EXPLAIN"}

var (
	forbiddenPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(forbiddenKeywords, "|") + `)\b`)

	// tokenPattern finds literals, quoted identifiers and comments in one
	// left-to-right pass, so a quote inside a comment or a comment marker
	// inside a literal is never mistaken for the other.
	tokenPattern = regexp.MustCompile(`(?s)'(?:[^']|'')*'|"(?:[^"]|"")*"|--[^\n]*|/\*.*?\*/`)
)

// ValidateSQL reports whether query passes CheckSQL.
func ValidateSQL(query string) bool {
	return CheckSQL(query) == nil
}

// CheckSQL accepts a single read-only statement. Keywords inside string
// literals, quoted identifiers and comments are ignored.
func CheckSQL(query string) error {
	stripped := strings.TrimRight(strip(query), "; \t\r\n")
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "query is empty")
	}
	if strings.Contains(stripped, ";") {
		return errors.WithHint(
			errors.Wrap(errors.ErrForbiddenQuery, "multiple statements are not allowed"),
			"send one read-only query at a time")
	}

	if m := forbiddenPattern.FindString(stripped); m != "" {
		return errors.WithHint(
			errors.Wrapf(errors.ErrForbiddenQuery, "%s statements are not allowed", strings.ToUpper(m)),
			"only read-only queries can feed a chart")
	}

	lead := strings.ToUpper(strings.TrimLeft(strings.Fields(stripped)[0], "("))
	for _, ok := range readOnlyLeads {
		if lead == ok {
			return nil
		}
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrForbiddenQuery, "query starts with %q", lead),
		"start the query with SELECT or WITH")
}

// strip blanks comments and empties literals and quoted identifiers.
func strip(query string) string {
	return tokenPattern.ReplaceAllStringFunc(query, func(tok string) string {
		switch tok[0] {
		case '\'':
			return "''"
		case '"':
			return `""`
		}
		return " "
	})
}
