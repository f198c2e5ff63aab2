// Package schema holds the declared database schema.
//
// The migration gate diffs these statements against the revision history
// to decide whether a new revision is needed. Statements are embedded so
// the binary carries its own schema definition.
package schema

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed declared/*.sql
var declared embed.FS

// Statements returns every declared DDL statement, in file order.
func Statements() ([]string, error) {
	entries, err := fs.ReadDir(declared, "declared")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		data, err := fs.ReadFile(declared, "declared/"+name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, Split(string(data))...)
	}
	return stmts, nil
}

// Split breaks SQL text into individual statements, dropping comments
// and blanks. Semicolons inside string literals are not handled; the
// declared schema does not use them.
func Split(sql string) []string {
	var stmts []string
	for _, raw := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, trimmed)
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.Join(lines, "\n"))
		}
	}
	return stmts
}

// Normalize canonicalizes a statement for comparison: lowercased,
// whitespace collapsed, trailing semicolon dropped.
func Normalize(stmt string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSuffix(strings.TrimSpace(stmt), ";")))
	return strings.Join(fields, " ")
}
