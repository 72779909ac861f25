package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

var (
	// ErrNoSuchField is returned when there is no field or no relation with that name.
	ErrNoSuchField = errors.New("field does not exist")
	// ErrNoSuchRelation is returned only when trying to select a nested field on a relation that does not exist.
	ErrNoSuchRelation = errors.New("relation does not exist")
	// ErrTooManyResults is returned when CollectOne is called but returned many models
	ErrTooManyResults = errors.New("too many result for CollectOne")
)

// ModelQuery is an immutable query description: the selected fields and
// relations of a schema plus the mods that filter, order and shape it.
type ModelQuery[T any] struct {
	schema ModelSchema[T]

	selectedFields         map[string]FieldType[T]
	selectedRelations      map[string]Relation[T]
	selectedRelationFields map[string][]string
	tableAlias             string
	queryMods              []QueryMod

	errors []error
}

func newModelQuery[T any](schema ModelSchema[T], fields ...string) ModelQuery[T] {
	query := ModelQuery[T]{
		schema:                 schema,
		selectedFields:         map[string]FieldType[T]{},
		selectedRelations:      map[string]Relation[T]{},
		selectedRelationFields: map[string][]string{},
		tableAlias:             schema.Table,
		queryMods:              []QueryMod{},
		errors:                 []error{},
	}

	return query.Select(fields...)
}

func (model ModelQuery[T]) ModifyQuery(mods ...QueryMod) ModelQuery[T] {
	model.queryMods = append(append([]QueryMod{}, model.queryMods...), mods...)

	return model
}

// Where narrows the query to rows matching all preds.
func (model ModelQuery[T]) Where(preds ...Pred) ModelQuery[T] {
	return model.ModifyQuery(Where(preds...))
}

// OrderBy appends ordering mods, applied in the given order.
func (model ModelQuery[T]) OrderBy(mods ...QueryMod) ModelQuery[T] {
	return model.ModifyQuery(mods...)
}

func (model ModelQuery[T]) Select(fieldNames ...string) ModelQuery[T] {
	model.cloneSelection()

	if len(fieldNames) == 0 {
		model.selectAllFields()
		return model
	}

	for _, name := range fieldNames {
		model.resolveSelect(name)
	}

	return model
}

func (model *ModelQuery[T]) resolveSelect(name string) {
	field, rest := isNested(name)

	if field == "*" {
		if rest != "" {
			model.addError(fmt.Errorf("%w: %s", ErrNoSuchRelation, field))
			return
		}

		model.selectAllFields()
		return
	}

	if model.schema.hasRelation(field) {
		if rest != "" && rest != "*" {
			// Validate the chosen nested field.
			if err := model.schema.Relations[field].Check(rest); err != nil {
				model.addError(err)
				return
			}
		}
		model.selectRelation(field, rest)
		return
	}

	if model.schema.hasField(field) {
		// Fields cannot have nesting
		if rest != "" {
			model.addError(fmt.Errorf("%w: %s", ErrNoSuchRelation, field))
			return
		}
		model.selectField(field)
		return
	}

	model.addError(fmt.Errorf("%w: %s", ErrNoSuchField, field))
}

func (model *ModelQuery[T]) selectAllFields() {
	maps.Copy(model.selectedFields, model.schema.Fields)
}

func (model *ModelQuery[T]) selectField(name string) {
	model.selectedFields[name] = model.schema.Fields[name]
}

func (model *ModelQuery[T]) selectRelation(relName, relField string) {
	if relField == "" {
		relField = "*"
	}

	model.selectedRelations[relName] = model.schema.Relations[relName]
	model.selectedRelationFields[relName] = append(model.selectedRelationFields[relName], relField)
}

// cloneSelection detaches the selection maps so derived queries never write
// into the maps of the query they were built from.
func (model *ModelQuery[T]) cloneSelection() {
	model.selectedFields = maps.Clone(model.selectedFields)
	model.selectedRelations = maps.Clone(model.selectedRelations)
	model.selectedRelationFields = lo.MapValues(model.selectedRelationFields, func(fields []string, _ string) []string {
		return slices.Clone(fields)
	})
	model.errors = slices.Clone(model.errors)
}

// =================
// Finishers
// =================

func (model ModelQuery[T]) Err() error {
	return errors.Join(model.errors...)
}

func (model ModelQuery[T]) Collect(ctx context.Context, db squirrel.BaseRunner) ([]T, error) {
	model, parents, err := model.collectBase(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := model.resolveRelations(ctx, db, parents); err != nil {
		return nil, err
	}
	return parents, nil
}

// CollectOne is Collect for exactly one row. No rows is sql.ErrNoRows.
func (model ModelQuery[T]) CollectOne(ctx context.Context, db squirrel.BaseRunner) (*T, error) {
	model, parents, err := model.collectBase(ctx, db)
	if err != nil {
		return nil, err
	}

	switch len(parents) {
	case 0:
		return nil, sql.ErrNoRows
	case 1:
	default:
		return nil, ErrTooManyResults
	}

	if err := model.resolveRelations(ctx, db, parents); err != nil {
		return nil, err
	}
	return &parents[0], nil
}

// Count returns the number of rows matching the query. Selected fields and
// relations are ignored.
func (model ModelQuery[T]) Count(ctx context.Context, db squirrel.BaseRunner) (int, error) {
	if err := model.Err(); err != nil {
		return 0, err
	}

	return Count(ctx, model.baseQuery(db, "COUNT(*)"))
}

// baseQuery applies the schema mods, then the runtime mods.
func (model ModelQuery[T]) baseQuery(db squirrel.BaseRunner, columns ...string) Q {
	q := squirrel.StatementBuilder.RunWith(db).Select(columns...).From(model.schema.Table)
	q = applyMods(q, model.tableAlias, model.schema.QueryMods)
	return applyMods(q, model.tableAlias, model.queryMods)
}

// collectBase reads the selected fields of every matching row, leaving the
// relations unresolved. It returns the query with relation dependencies added.
func (model ModelQuery[T]) collectBase(ctx context.Context, db squirrel.BaseRunner) (ModelQuery[T], []T, error) {
	model = model.withDependencies()
	if err := model.Err(); err != nil {
		return model, nil, err
	}

	q := model.baseQuery(db)
	scans := make([]RowScan[T], 0, len(model.selectedFields))
	for _, field := range model.selectedFields {
		q = field.Mod(q, model.tableAlias)
		scans = append(scans, field.RowScan)
	}

	parents, err := Collect(ctx, q, flattenRowScan(scans))
	return model, parents, err
}

// withDependencies selects the fields every selected relation needs to bind
// its children to the parents.
func (model ModelQuery[T]) withDependencies() ModelQuery[T] {
	for _, rel := range model.selectedRelations {
		if rel.ModelQueryMod != nil {
			model = rel.ModelQueryMod(model)
		}
	}

	return model
}

func (model ModelQuery[T]) resolveRelations(ctx context.Context, db squirrel.BaseRunner, parents []T) error {
	if len(parents) == 0 {
		return nil
	}

	for name, relation := range model.selectedRelations {
		if err := relation.Resolve(ctx, db, parents, model.selectedRelationFields[name]); err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
	}
	return nil
}

// =================
// Utilities
// =================

func (model *ModelQuery[T]) addError(err error) {
	model.errors = append(model.errors, err)
}

// isNested splits "relation.field" into its relation and the rest.
func isNested(name string) (string, string) {
	field, rest, _ := strings.Cut(name, ".")
	return field, rest
}
