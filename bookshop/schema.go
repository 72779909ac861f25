package bookshop

import (
	"database/sql"

	"github.com/Masterminds/squirrel"

	"pollex.nl/bookshop/query"
)

const (
	tableAuthors        = "authors"
	tableBooks          = "books"
	tableCategories     = "categories"
	tableBookCategories = "books_categories"
)

// recentPerCategory is how many books the most recent report lists per
// category.
const recentPerCategory = 3

var AuthorSchema = query.New[Author](tableAuthors).
	AddSimpleField("id", func(t *Author) any { return &t.ID }).
	AddSimpleField("first_name", func(t *Author) any { return &t.FirstName }).
	AddSimpleField("last_name", func(t *Author) any { return &t.LastName })

var BookSchema = query.New[Book](tableBooks).
	AddSimpleField("id", func(t *Book) any { return &t.ID }).
	AddSimpleField("title", func(t *Book) any { return &t.Title }).
	AddField("description", query.Col("description"), query.Convert(func(t *Book, s sql.NullString) {
		t.Description = s.String
	})).
	AddField("price", query.Col("price"), query.Convert(func(t *Book, cents int64) {
		t.Price = fromCents(cents)
	})).
	AddSimpleField("copies", func(t *Book) any { return &t.Copies }).
	AddSimpleField("edition_type", func(t *Book) any { return &t.EditionType }).
	AddSimpleField("age_restriction", func(t *Book) any { return &t.AgeRestriction }).
	AddSimpleField("release_date", func(t *Book) any { return &t.ReleaseDate }).
	AddSimpleField("author_id", func(t *Book) any { return &t.AuthorID }).
	AddRelation("author",
		query.HasOne(AuthorSchema,
			func(b Book, a Author) bool { return a.ID == b.AuthorID },
			func(b *Book, a Author) { b.Author = &a },
			query.WhereIDs("id", func(b Book) int64 { return b.AuthorID }),
			query.DependsOn("author_id", "author.id"),
		),
	)

// recentBookSchema reads the newest dated books of each category through the
// category links, at most recentPerCategory per category.
var recentBookSchema = query.New[RecentBook](tableBookCategories).
	AddSimpleField("category_id", func(t *RecentBook) any { return &t.CategoryID }).
	AddField("title", query.Col("books.title"), query.Ptr(func(t *RecentBook) any { return &t.Title })).
	AddField("release_date", query.Col("books.release_date"), query.Ptr(func(t *RecentBook) any { return &t.ReleaseDate })).
	ModifyQuery(query.Join("books ON books.id = books_categories.book_id")).
	ModifyQuery(query.Where(query.NotNull("books.release_date"), rankedWithinCategory(recentPerCategory))).
	ModifyQuery(query.Desc("books.release_date")).
	ModifyQuery(query.Asc("books.title")).
	ModifyQuery(query.Asc("books.id"))

var CategorySchema = query.New[Category](tableCategories).
	AddSimpleField("id", func(t *Category) any { return &t.ID }).
	AddSimpleField("name", func(t *Category) any { return &t.Name }).
	AddRelation("recent_books",
		query.CreateRelation(recentBookSchema,
			query.BindByKey(
				func(c Category) int64 { return c.ID },
				func(b RecentBook) int64 { return b.CategoryID },
				func(c *Category, books []RecentBook) { c.RecentBooks = books },
			),
			query.WhereIDs("category_id", func(c Category) int64 { return c.ID }),
			func(model query.ModelQuery[Category]) query.ModelQuery[Category] {
				return model.Select("id", "recent_books.category_id")
			},
		),
	)

// authorCopiesSchema groups every author with the books they own. Authors
// without books total zero.
var authorCopiesSchema = query.New[Author](tableAuthors).
	AddSimpleField("id", func(t *Author) any { return &t.ID }).
	AddSimpleField("first_name", func(t *Author) any { return &t.FirstName }).
	AddSimpleField("last_name", func(t *Author) any { return &t.LastName }).
	AddFieldType("total_copies", query.ComputedField(
		"total_copies",
		"COALESCE(SUM(books.copies), 0)",
		query.Ptr(func(t *Author) any { return &t.TotalCopies }),
	)).
	ModifyQuery(query.LeftJoin("books ON books.author_id = authors.id")).
	ModifyQuery(query.GroupBy("id"))

// categoryProfitSchema groups every category with the books linked to it.
// Categories without books have zero profit.
var categoryProfitSchema = query.New[Category](tableCategories).
	AddSimpleField("id", func(t *Category) any { return &t.ID }).
	AddSimpleField("name", func(t *Category) any { return &t.Name }).
	AddFieldType("profit", query.ComputedField(
		"profit",
		"COALESCE(SUM(books.price * books.copies), 0)",
		query.Convert(func(t *Category, cents int64) { t.Profit = fromCents(cents) }),
	)).
	ModifyQuery(query.LeftJoin("books_categories ON books_categories.category_id = categories.id")).
	ModifyQuery(query.LeftJoin("books ON books.id = books_categories.book_id")).
	ModifyQuery(query.GroupBy("id"))

// inCategories matches books linked to one of the categories in ids.
func inCategories(ids []int64) query.Pred {
	return query.Exists(func(outer string) squirrel.SelectBuilder {
		return squirrel.Select("1").
			From(tableBookCategories).
			Where("books_categories.book_id = " + query.TableCol(outer, "id")).
			Where(query.Eq("category_id", ids)(tableBookCategories))
	})
}

// rankedWithinCategory keeps a linked book when fewer than n dated books of
// the same category sort before it by release date desc, title, id.
func rankedWithinCategory(n int) query.Pred {
	return query.Raw(`(
		SELECT COUNT(*) FROM books_categories bc
		JOIN books b ON b.id = bc.book_id
		WHERE bc.category_id = books_categories.category_id
			AND b.release_date IS NOT NULL
			AND (b.release_date > books.release_date
				OR (b.release_date = books.release_date AND b.title < books.title)
				OR (b.release_date = books.release_date AND b.title = books.title AND b.id < books.id))
	) < ?`, n)
}

// byAuthorLastNamePrefix matches books whose author's last name starts with
// prefix.
func byAuthorLastNamePrefix(prefix string) query.Pred {
	return query.Exists(func(outer string) squirrel.SelectBuilder {
		return squirrel.Select("1").
			From(tableAuthors).
			Where("authors.id = " + query.TableCol(outer, "author_id")).
			Where(query.HasPrefix("last_name", prefix)(tableAuthors))
	})
}

// inAnyCategory matches books linked to at least one category.
func inAnyCategory() query.Pred {
	return query.Exists(func(outer string) squirrel.SelectBuilder {
		return squirrel.Select("1").
			From(tableBookCategories).
			Where("books_categories.book_id = " + query.TableCol(outer, "id"))
	})
}
