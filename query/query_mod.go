package query

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

type (
	Q        = squirrel.SelectBuilder
	QueryMod func(q Q, table string) Q
	// Pred is a predicate over the columns of the table it is applied to.
	Pred func(table string) squirrel.Sqlizer
)

func Col(names ...string) QueryMod {
	return func(q Q, table string) Q {
		return q.Columns(lo.Map(names, func(name string, _ int) string { return TableCol(table, name) })...)
	}
}

// Expr selects a computed expression under the given alias.
func Expr(alias, expr string, args ...any) QueryMod {
	return func(q Q, _ string) Q {
		return q.Column(squirrel.Alias(squirrel.Expr(expr, args...), alias))
	}
}

func TableCol(table, name string) string {
	if table == "" || strings.Contains(name, ".") {
		return name
	}
	return table + "." + name
}

func applyMods(q Q, table string, mods []QueryMod) Q {
	for _, mod := range mods {
		q = mod(q, table)
	}

	return q
}

// =================
// Filtering
// =================

// Where ANDs all predicates into the query.
func Where(preds ...Pred) QueryMod {
	return func(q Q, table string) Q {
		for _, pred := range preds {
			q = q.Where(pred(table))
		}
		return q
	}
}

// Raw is a predicate written in plain SQL. It does not qualify columns with
// the table it is applied to.
func Raw(sql string, args ...any) Pred {
	return func(string) squirrel.Sqlizer { return squirrel.Expr(sql, args...) }
}

// Eq compares col to v. A slice value turns into an IN list.
func Eq(col string, v any) Pred {
	return func(table string) squirrel.Sqlizer { return squirrel.Eq{TableCol(table, col): v} }
}

func NotEq(col string, v any) Pred {
	return func(table string) squirrel.Sqlizer { return squirrel.NotEq{TableCol(table, col): v} }
}

func Lt(col string, v any) Pred {
	return func(table string) squirrel.Sqlizer { return squirrel.Lt{TableCol(table, col): v} }
}

func Gt(col string, v any) Pred {
	return func(table string) squirrel.Sqlizer { return squirrel.Gt{TableCol(table, col): v} }
}

func GtOrEq(col string, v any) Pred {
	return func(table string) squirrel.Sqlizer { return squirrel.GtOrEq{TableCol(table, col): v} }
}

func IsNull(col string) Pred {
	return Eq(col, nil)
}

func NotNull(col string) Pred {
	return NotEq(col, nil)
}

// Contains matches rows whose col contains s. Case sensitivity follows the
// collation of the underlying engine.
func Contains(col, s string) Pred {
	return like(col, "%"+escapeLike(s)+"%")
}

func HasPrefix(col, prefix string) Pred {
	return like(col, escapeLike(prefix)+"%")
}

func HasSuffix(col, suffix string) Pred {
	return like(col, "%"+escapeLike(suffix))
}

// LongerThan matches rows whose col has more than n characters.
func LongerThan(col string, n int) Pred {
	return func(table string) squirrel.Sqlizer {
		return squirrel.Expr(fmt.Sprintf("LENGTH(%s) > ?", TableCol(table, col)), n)
	}
}

// Exists matches rows for which the correlated sub query returns a row. The
// builder receives the outer table so it can reference its columns.
func Exists(sub func(outer string) squirrel.SelectBuilder) Pred {
	return func(table string) squirrel.Sqlizer { return existsExpr{sub(table)} }
}

func AnyOf(preds ...Pred) Pred {
	return func(table string) squirrel.Sqlizer {
		or := squirrel.Or{}
		for _, pred := range preds {
			or = append(or, pred(table))
		}
		return or
	}
}

type existsExpr struct {
	sub squirrel.SelectBuilder
}

func (e existsExpr) ToSql() (string, []any, error) {
	sql, args, err := e.sub.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (" + sql + ")", args, nil
}

func like(col, pattern string) Pred {
	return func(table string) squirrel.Sqlizer {
		return squirrel.Expr(fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, TableCol(table, col)), pattern)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// =================
// Shaping
// =================

func Join(clause string, args ...any) QueryMod {
	return func(q Q, _ string) Q { return q.Join(clause, args...) }
}

func LeftJoin(clause string, args ...any) QueryMod {
	return func(q Q, _ string) Q { return q.LeftJoin(clause, args...) }
}

func GroupBy(cols ...string) QueryMod {
	return func(q Q, table string) Q {
		return q.GroupBy(lo.Map(cols, func(col string, _ int) string { return TableCol(table, col) })...)
	}
}

func Asc(col string) QueryMod {
	return func(q Q, table string) Q { return q.OrderBy(TableCol(table, col) + " ASC") }
}

func Desc(col string) QueryMod {
	return func(q Q, table string) Q { return q.OrderBy(TableCol(table, col) + " DESC") }
}

// OrderByAlias orders by a computed column selected with Expr.
func OrderByAlias(alias string, desc bool) QueryMod {
	return func(q Q, _ string) Q {
		if desc {
			return q.OrderBy(alias + " DESC")
		}
		return q.OrderBy(alias + " ASC")
	}
}

func Limit(n uint64) QueryMod {
	return func(q Q, _ string) Q { return q.Limit(n) }
}
