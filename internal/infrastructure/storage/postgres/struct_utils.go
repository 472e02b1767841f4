package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names from T's "db" tags in field
// order, descending into embedded structs. Fields tagged "-" are skipped.
//
//	var userColumns = ExtractDBColumns[auth.User]()
//	// ["id", "name", "email", "password_hash", "role", "created_at", "updated_at"]
func ExtractDBColumns[T any]() []string {
	var zero T
	return extractColumnsFromType(reflect.TypeOf(zero))
}

func extractColumnsFromType(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, extractColumnsFromType(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// Qualify prefixes every column with a table alias.
func Qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// fieldInfo is a tagged field of a cached type.
type fieldInfo struct {
	index int
	dbTag string
}

type typeMetadata struct {
	fields          []fieldInfo
	embeddedIndices []int
}

// typeCache holds *typeMetadata per reflect.Type.
var typeCache sync.Map

func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			meta.embeddedIndices = append(meta.embeddedIndices, i)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
		}
	}

	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

// StructToMap converts a struct (or pointer to one) to a column map using
// its "db" tags, suitable for squirrel's SetMap. Columns listed in omit are
// left out.
func StructToMap(v any, omit ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	structToMap(rv, res)
	for _, col := range omit {
		delete(res, col)
	}
	return res
}

func structToMap(rv reflect.Value, res map[string]any) {
	meta := getOrCreateTypeMetadata(rv.Type())
	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
	for _, idx := range meta.embeddedIndices {
		emb := rv.Field(idx)
		if emb.Kind() == reflect.Ptr {
			if emb.IsNil() {
				continue
			}
			emb = emb.Elem()
		}
		if emb.Kind() == reflect.Struct {
			structToMap(emb, res)
		}
	}
}
