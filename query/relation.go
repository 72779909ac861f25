package query

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

type (
	Resolve[M any]            func(ctx context.Context, db squirrel.BaseRunner, parents []M, fields []string) error
	FieldCheck                func(fields string) error
	Binder[M, N any]          func(parents []M, children []N)
	ModelQueryModifier[M any] func(model ModelQuery[M]) ModelQuery[M]
	// ParentFilter narrows a child query down to the children of parents.
	ParentFilter[M any] func(parents []M) QueryMod
)

// Relation loads the children of a set of parents with one extra query and
// binds them back onto the parents.
type Relation[M any] struct {
	Resolve Resolve[M]
	Check   FieldCheck
	// ModelQueryMod adds the parent fields the relation needs to bind.
	ModelQueryMod ModelQueryModifier[M]
}

// HasMany hands every parent all children belongTogether accepts.
func HasMany[M, N any](
	child *ModelSchema[N],
	belongTogether func(M, N) bool,
	assign func(*M, []N),
	filter ParentFilter[M],
	depends []string,
) Relation[M] {
	return CreateRelation(child, BindBy(belongTogether, assign), filter, selectDepends[M](depends))
}

// HasOne hands every parent the first child belongTogether accepts, if any.
func HasOne[M, N any](
	child *ModelSchema[N],
	belongTogether func(M, N) bool,
	assign func(*M, N),
	filter ParentFilter[M],
	depends []string,
) Relation[M] {
	return CreateRelation(child, BindByOne(belongTogether, assign), filter, selectDepends[M](depends))
}

func CreateRelation[M, N any](
	child *ModelSchema[N],
	binder Binder[M, N],
	filter ParentFilter[M],
	depends ModelQueryModifier[M],
) Relation[M] {
	resolve := func(ctx context.Context, db squirrel.BaseRunner, parents []M, fields []string) error {
		children, err := child.Query(fields...).ModifyQuery(filter(parents)).Collect(ctx, db)
		if err != nil {
			return fmt.Errorf("%s: %w", child.Table, err)
		}
		binder(parents, children)
		return nil
	}

	return Relation[M]{
		Resolve:       resolve,
		Check:         child.Check,
		ModelQueryMod: depends,
	}
}

func BindBy[M, N any](belongTogether func(M, N) bool, assign func(*M, []N)) Binder[M, N] {
	return func(parents []M, children []N) {
		for ix := range parents {
			parent := &parents[ix]
			assign(parent, lo.Filter(children, func(child N, _ int) bool {
				return belongTogether(*parent, child)
			}))
		}
	}
}

// BindByKey groups the children by key once and hands every parent the group
// with its own key. Children keep the order they were queried in.
func BindByKey[M, N any, K comparable](
	parentKey func(M) K,
	childKey func(N) K,
	assign func(*M, []N),
) Binder[M, N] {
	return func(parents []M, children []N) {
		groups := lo.GroupBy(children, childKey)
		for ix := range parents {
			assign(&parents[ix], groups[parentKey(parents[ix])])
		}
	}
}

// BindByOne leaves parents without a matching child untouched.
func BindByOne[M, N any](belongTogether func(M, N) bool, assign func(*M, N)) Binder[M, N] {
	return func(parents []M, children []N) {
		for ix := range parents {
			parent := &parents[ix]
			child, ok := lo.Find(children, func(child N) bool {
				return belongTogether(*parent, child)
			})
			if ok {
				assign(parent, child)
			}
		}
	}
}

// WhereIDs restricts the children to those whose col holds one of the
// parents' ids.
func WhereIDs[M any, K comparable](col string, getID func(m M) K) ParentFilter[M] {
	return func(parents []M) QueryMod {
		ids := lo.Uniq(lo.Map(parents, func(parent M, _ int) K { return getID(parent) }))
		return Where(Eq(col, ids))
	}
}

func DependsOn(fields ...string) []string {
	return fields
}

func selectDepends[M any](depends []string) ModelQueryModifier[M] {
	return func(model ModelQuery[M]) ModelQuery[M] {
		if len(depends) == 0 {
			return model
		}
		return model.Select(depends...)
	}
}
