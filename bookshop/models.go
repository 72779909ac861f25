package bookshop

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownAgeRestriction = errors.New("unknown age restriction")
	ErrUnknownEditionType    = errors.New("unknown edition type")
	ErrInvalidDate           = errors.New("invalid date")
)

type EditionType int

const (
	EditionNormal EditionType = iota
	EditionPromo
	EditionGold
)

var editionNames = []string{"Normal", "Promo", "Gold"}

func (e EditionType) String() string {
	if e < 0 || int(e) >= len(editionNames) {
		return fmt.Sprintf("EditionType(%d)", int(e))
	}
	return editionNames[e]
}

// ParseEditionType parses an edition name, ignoring case.
func ParseEditionType(s string) (EditionType, error) {
	ix, err := parseName(editionNames, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEditionType, s)
	}
	return EditionType(ix), nil
}

func (e EditionType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EditionType) UnmarshalText(text []byte) (err error) {
	*e, err = ParseEditionType(string(text))
	return err
}

type AgeRestriction int

const (
	AgeMinor AgeRestriction = iota
	AgeTeen
	AgeAdult
)

var ageRestrictionNames = []string{"Minor", "Teen", "Adult"}

func (a AgeRestriction) String() string {
	if a < 0 || int(a) >= len(ageRestrictionNames) {
		return fmt.Sprintf("AgeRestriction(%d)", int(a))
	}
	return ageRestrictionNames[a]
}

// ParseAgeRestriction parses a restriction name, ignoring case.
func ParseAgeRestriction(s string) (AgeRestriction, error) {
	ix, err := parseName(ageRestrictionNames, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAgeRestriction, s)
	}
	return AgeRestriction(ix), nil
}

func (a AgeRestriction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AgeRestriction) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAgeRestriction(string(text))
	return err
}

func parseName(names []string, s string) (int, error) {
	s = strings.TrimSpace(s)
	for ix, name := range names {
		if strings.EqualFold(name, s) {
			return ix, nil
		}
	}
	return -1, errors.New("no match")
}

// Date is an optional calendar date. It is stored as YYYY-MM-DD text.
type Date struct {
	Time  time.Time
	Valid bool
}

const dateLayout = time.DateOnly

var scanLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate parses s with layout and reports ErrInvalidDate on failure.
func ParseDate(layout, s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d Date) Year() int { return d.Time.Year() }

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, value)
	}
}

func (d *Date) parse(s string) error {
	for _, layout := range scanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t.Year(), t.Month(), t.Day())
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Time.Format(dateLayout), nil
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(dateLayout, string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Author struct {
	ID        int64
	FirstName string
	LastName  string

	// TotalCopies is only filled by the copies per author report.
	TotalCopies int
}

func (a Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Prices are stored as integer cents so sums and raises stay exact.
const priceScale = 2

// toCents rounds d half away from zero to whole cents.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(priceScale).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -priceScale)
}

type Book struct {
	ID             int64
	Title          string
	Description    string
	Price          decimal.Decimal
	Copies         int
	EditionType    EditionType
	AgeRestriction AgeRestriction
	ReleaseDate    Date
	AuthorID       int64

	Author *Author
}

type Category struct {
	ID   int64
	Name string

	// Profit is only filled by the profit per category report.
	Profit decimal.Decimal
	// RecentBooks holds the most recently released books, newest first.
	RecentBooks []RecentBook
}

// BookCategory links one book to one category.
type BookCategory struct {
	BookID     int64
	CategoryID int64
}

// RecentBook is a dated book as seen from one of its categories.
type RecentBook struct {
	CategoryID  int64
	Title       string
	ReleaseDate Date
}
