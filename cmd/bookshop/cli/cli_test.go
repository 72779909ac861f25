package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
authors:
  - {id: 1, first_name: Incognito, last_name: Writer}
  - {id: 2, first_name: Ana, last_name: Ricci}
categories:
  - {id: 1, name: Drama}
books:
  - id: 1
    title: Bread or Dead
    price: 45.00
    copies: 1000
    edition: Gold
    age_restriction: Teen
    release_date: 2008-03-15
    author_id: 1
    categories: [1]
  - id: 2
    title: Apple Tree
    price: 20.00
    copies: 6000
    edition: Gold
    age_restriction: Minor
    release_date: 2010-05-05
    author_id: 2
    categories: [1]
`

func setupCLI(t *testing.T) []string {
	t.Helper()
	t.Setenv("BOOKSHOP_LOG_LEVEL", "error")
	t.Setenv("BOOKSHOP_CONFIG", "")

	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(fixtureYAML), 0o644))

	flags := []string{"-db", filepath.Join(dir, "shop.db")}

	var out bytes.Buffer
	require.Equal(t, 0, Run(append(flags, "init", fixture), &out))
	assert.Equal(t, "database initialized with 2 books\n", out.String())

	return flags
}

func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := Run(args, &out)
	return code, out.String()
}

func TestRunReports(t *testing.T) {
	flags := setupCLI(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"golden"}, "Bread or Dead\n"},
		{[]string{"by-price"}, "Bread or Dead - $45.00\n"},
		{[]string{"age-restriction", "minor"}, "Apple Tree\n"},
		{[]string{"by-category", "drama", "poetry"}, "Apple Tree\nBread or Dead\n"},
		{[]string{"count-books", "10"}, "1\n"},
		{[]string{"copies-by-author"}, "Ana Ricci - 6000\nIncognito Writer - 1000\n"},
		{[]string{"most-recent"}, "--Drama\nApple Tree (2010)\nBread or Dead (2008)\n"},
		{[]string{"by-author", "Wr"}, "Bread or Dead (Incognito Writer)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			code, out := run(t, append(flags, tt.args...)...)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunMaintenance(t *testing.T) {
	flags := setupCLI(t)

	code, out := run(t, append(flags, "increase-prices")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "1 books updated\n", out)

	code, out = run(t, append(flags, "by-price")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "Bread or Dead - $50.00\n", out)

	code, out = run(t, append(flags, "remove-books")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "1 books were deleted\n", out)
}

func TestRunErrors(t *testing.T) {
	flags := setupCLI(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"help", []string{"-h"}, 0},
		{"no command", nil, 2},
		{"init with two fixtures", []string{"init", "a.yaml", "b.yaml"}, 2},
		{"unknown command", []string{"dance"}, 2},
		{"missing argument", []string{"released-before"}, 2},
		{"year is not a number", []string{"not-released-in", "soon"}, 2},
		{"bad undated policy", []string{"-undated", "maybe", "golden"}, 2},
		{"unknown restriction", []string{"age-restriction", "toddler"}, 1},
		{"bad date", []string{"released-before", "2010-01-01"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := run(t, append(append([]string{}, flags...), tt.args...)...)
			assert.Equal(t, tt.code, code)
			assert.Empty(t, out)
		})
	}
}

func TestRunInitWithoutFixture(t *testing.T) {
	flags := setupCLI(t)

	code, out := run(t, append(flags, "init")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "database initialized\n", out)

	code, out = run(t, append(flags, "golden")...)
	require.Equal(t, 0, code)
	assert.Empty(t, out)
}
