package bookshop

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Report lines are joined with "\n" and carry no trailing newline.

func formatLines[T any](rows []T, line func(T) string) string {
	return strings.Join(lo.Map(rows, func(row T, _ int) string { return line(row) }), "\n")
}

func formatTitles(books []Book) string {
	return formatLines(books, func(b Book) string { return b.Title })
}

func formatPricedTitles(books []Book) string {
	return formatLines(books, func(b Book) string {
		return fmt.Sprintf("%s - $%s", b.Title, b.Price.StringFixed(2))
	})
}

func formatReleasedBefore(books []Book) string {
	return formatLines(books, func(b Book) string {
		return fmt.Sprintf("%s - %s - $%s", b.Title, b.EditionType, b.Price.StringFixed(2))
	})
}

func formatAuthorNames(authors []Author) string {
	return formatLines(authors, Author.FullName)
}

func formatTitlesWithAuthor(books []Book) string {
	return formatLines(books, func(b Book) string {
		if b.Author == nil {
			return b.Title
		}
		return fmt.Sprintf("%s (%s)", b.Title, b.Author.FullName())
	})
}

func formatCopiesByAuthor(authors []Author) string {
	return formatLines(authors, func(a Author) string {
		return fmt.Sprintf("%s - %d", a.FullName(), a.TotalCopies)
	})
}

func formatProfits(categories []Category) string {
	return formatLines(categories, func(c Category) string {
		return fmt.Sprintf("%s $%s", c.Name, c.Profit.StringFixed(2))
	})
}

func formatRecentBooks(categories []Category) string {
	var lines []string
	for _, c := range categories {
		lines = append(lines, "--"+c.Name)
		for _, b := range c.RecentBooks {
			lines = append(lines, fmt.Sprintf("%s (%d)", b.Title, b.ReleaseDate.Year()))
		}
	}
	return strings.Join(lines, "\n")
}
