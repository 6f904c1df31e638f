package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// columnMeta is the cached "db" tag layout of one struct type.
type columnMeta struct {
	columns  []string
	indices  []int
	embedded []int
}

var columnCache sync.Map // map[reflect.Type]*columnMeta

func metaFor(t reflect.Type) *columnMeta {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnMeta)
	}

	meta := &columnMeta{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				meta.embedded = append(meta.embedded, i)
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.columns = append(meta.columns, tag)
			meta.indices = append(meta.indices, i)
		}
	}

	columnCache.Store(t, meta)
	return meta
}

// ExtractDBColumns lists the "db" columns of T, embedded structs first-level
// flattened, in declaration order, skipping any name in exclude.
func ExtractDBColumns[T any](exclude ...string) []string {
	var zero T
	return filterColumns(columnsOf(reflect.TypeOf(zero)), exclude)
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	meta := metaFor(t)

	var cols []string
	for _, idx := range meta.embedded {
		cols = append(cols, columnsOf(t.Field(idx).Type)...)
	}
	return append(cols, meta.columns...)
}

func filterColumns(cols, exclude []string) []string {
	if len(exclude) == 0 {
		return cols
	}
	out := cols[:0:0]
	for _, c := range cols {
		if !slices.Contains(exclude, c) {
			out = append(out, c)
		}
	}
	return out
}

// StructToMap converts a struct to a column→value map using "db" tags.
func StructToMap(v any, exclude ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	collect(rv, res)
	for _, c := range exclude {
		delete(res, c)
	}
	return res
}

func collect(rv reflect.Value, into map[string]any) {
	meta := metaFor(rv.Type())
	for _, idx := range meta.embedded {
		f := rv.Field(idx)
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		if f.Kind() == reflect.Struct {
			collect(f, into)
		}
	}
	for i, idx := range meta.indices {
		into[meta.columns[i]] = rv.Field(idx).Interface()
	}
}

// ValuesFor returns the values of m in column order.
func ValuesFor(m map[string]any, columns []string) []any {
	vals := make([]any, len(columns))
	for i, c := range columns {
		vals[i] = m[c]
	}
	return vals
}
