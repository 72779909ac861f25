package query

type (
	// Ptrs are the scan destinations a field contributes to a row.
	Ptrs []any
	// RowScan returns the scan destinations for one row of T and an optional
	// action that runs after the row was scanned.
	RowScan[T any] func(*T) (Ptrs, Action)
	Action         func()
	FieldType[T any] struct {
		Mod     QueryMod
		RowScan RowScan[T]
	}
)

func Ptr[T any](ptr func(t *T) any) RowScan[T] {
	return func(t *T) (Ptrs, Action) {
		return Ptrs{ptr(t)}, nil
	}
}

// Convert scans into an intermediate value of type S and hands it to assign
// once the row is read.
func Convert[T, S any](assign func(t *T, s S)) RowScan[T] {
	return func(t *T) (Ptrs, Action) {
		var s S
		return Ptrs{&s}, func() { assign(t, s) }
	}
}

func Field[T any](mod QueryMod, scan RowScan[T]) FieldType[T] {
	return FieldType[T]{mod, scan}
}

// ComputedField selects expr under alias and scans it with scan.
func ComputedField[T any](alias, expr string, scan RowScan[T]) FieldType[T] {
	return FieldType[T]{Expr(alias, expr), scan}
}

func flattenRowScan[T any](rowScans []RowScan[T]) RowScan[T] {
	return func(t *T) (Ptrs, Action) {
		var (
			pointers Ptrs
			actions  []Action
		)
		for _, rowScan := range rowScans {
			ptr, action := rowScan(t)
			pointers = append(pointers, ptr...)
			if action != nil {
				actions = append(actions, action)
			}
		}

		return pointers, flattenActions(actions)
	}
}

func flattenActions(actions []Action) Action {
	return func() {
		for _, action := range actions {
			action()
		}
	}
}
