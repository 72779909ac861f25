package bookshop

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedBatch bounds the rows per INSERT so the bound parameters stay well
// below SQLite's variable limit.
const seedBatch = 100

// Fixture is a complete data set for the store, usually read from YAML.
type Fixture struct {
	Authors    []FixtureAuthor   `yaml:"authors"`
	Categories []FixtureCategory `yaml:"categories"`
	Books      []FixtureBook     `yaml:"books"`
}

type FixtureAuthor struct {
	ID        int64  `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type FixtureCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type FixtureBook struct {
	ID             int64           `yaml:"id"`
	Title          string          `yaml:"title"`
	Description    string          `yaml:"description"`
	Price          decimal.Decimal `yaml:"price"`
	Copies         int             `yaml:"copies"`
	EditionType    EditionType     `yaml:"edition"`
	AgeRestriction AgeRestriction  `yaml:"age_restriction"`
	ReleaseDate    Date            `yaml:"release_date"`
	AuthorID       int64           `yaml:"author_id"`
	Categories     []int64         `yaml:"categories"`
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	return &fixture, nil
}

// Seed inserts the fixture in one transaction. Nothing is inserted when any
// row fails.
func (s *Store) Seed(ctx context.Context, fixture *Fixture) error {
	err := s.InTx(ctx, func(tx *sql.Tx) error {
		sq := squirrel.StatementBuilder.RunWith(tx)

		for _, batch := range lo.Chunk(fixture.Authors, seedBatch) {
			q := sq.Insert(tableAuthors).Columns("id", "first_name", "last_name")
			for _, a := range batch {
				q = q.Values(a.ID, a.FirstName, a.LastName)
			}
			if _, err := q.ExecContext(ctx); err != nil {
				return fmt.Errorf("insert authors: %w", err)
			}
		}

		for _, batch := range lo.Chunk(fixture.Categories, seedBatch) {
			q := sq.Insert(tableCategories).Columns("id", "name")
			for _, c := range batch {
				q = q.Values(c.ID, c.Name)
			}
			if _, err := q.ExecContext(ctx); err != nil {
				return fmt.Errorf("insert categories: %w", err)
			}
		}

		for _, batch := range lo.Chunk(fixture.Books, seedBatch) {
			q := sq.Insert(tableBooks).Columns(
				"id", "title", "description", "price", "copies",
				"edition_type", "age_restriction", "release_date", "author_id",
			)
			for _, b := range batch {
				q = q.Values(
					b.ID, b.Title, sql.NullString{String: b.Description, Valid: b.Description != ""},
					toCents(b.Price), b.Copies, int(b.EditionType), int(b.AgeRestriction), b.ReleaseDate, b.AuthorID,
				)
			}
			if _, err := q.ExecContext(ctx); err != nil {
				return fmt.Errorf("insert books: %w", err)
			}
		}

		links := lo.FlatMap(fixture.Books, func(b FixtureBook, _ int) []BookCategory {
			return lo.Map(lo.Uniq(b.Categories), func(id int64, _ int) BookCategory {
				return BookCategory{BookID: b.ID, CategoryID: id}
			})
		})
		for _, batch := range lo.Chunk(links, seedBatch) {
			q := sq.Insert(tableBookCategories).Columns("book_id", "category_id")
			for _, link := range batch {
				q = q.Values(link.BookID, link.CategoryID)
			}
			if _, err := q.ExecContext(ctx); err != nil {
				return fmt.Errorf("insert book categories: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Database seeded",
		"authors", len(fixture.Authors),
		"categories", len(fixture.Categories),
		"books", len(fixture.Books),
	)
	return nil
}
