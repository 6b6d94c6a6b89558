package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

type modelColumn struct {
	name      string
	value     any
	immutable bool
}

// InsertModel builds an INSERT from the exported `db`-tagged fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	names, vals := splitColumns(cols)
	return InsertInto(table).
		Columns(names...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// UpsertModel builds INSERT ... ON CONFLICT (conflict) DO UPDATE that
// overwrites every column except the conflict target and fields tagged
// `db:"col,immutable"`. guard, when set, becomes the conflict WHERE clause.
func UpsertModel(table string, model any, conflict, guard, returning string) (string, []any, error) {
	cols, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	conflict = strings.TrimSpace(conflict)
	if conflict == "" {
		return "", nil, fmt.Errorf("conflict target is required")
	}

	var suffix strings.Builder
	suffix.WriteString("ON CONFLICT (")
	suffix.WriteString(conflict)
	suffix.WriteString(") DO UPDATE SET ")
	updated := 0
	for _, col := range cols {
		if col.immutable || col.name == conflict {
			continue
		}
		if updated > 0 {
			suffix.WriteString(", ")
		}
		suffix.WriteString(col.name)
		suffix.WriteString(" = EXCLUDED.")
		suffix.WriteString(col.name)
		updated++
	}
	if updated == 0 {
		return "", nil, fmt.Errorf("model has no updatable columns")
	}
	if guard = strings.TrimSpace(guard); guard != "" {
		suffix.WriteString(" WHERE ")
		suffix.WriteString(guard)
	}
	if returning = strings.TrimSpace(returning); returning != "" {
		suffix.WriteString(" RETURNING ")
		suffix.WriteString(returning)
	}

	names, vals := splitColumns(cols)
	return InsertInto(table).
		Columns(names...).
		Values(vals...).
		Suffix(suffix.String()).
		ToSQL()
}

func splitColumns(cols []modelColumn) ([]string, []any) {
	names := make([]string, len(cols))
	vals := make([]any, len(cols))
	for i, col := range cols {
		names[i] = col.name
		vals[i] = col.value
	}
	return names, vals
}

func modelColumns(model any) ([]modelColumn, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]modelColumn, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(strings.TrimSpace(field.Tag.Get("db")), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, modelColumn{
			name:      name,
			value:     value.Field(i).Interface(),
			immutable: strings.Contains(","+opts+",", ",immutable,"),
		})
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return cols, nil
}
