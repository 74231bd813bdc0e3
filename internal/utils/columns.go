package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a struct, descending into
// untagged embedded structs so grouped fields stay in the column list.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	walkColumns(structValue(input), func(column string, _ reflect.Value) {
		result = append(result, column)
	})
	return result
}

// StructToMap maps column names to field values, ready for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	walkColumns(structValue(input), func(column string, v reflect.Value) {
		result[column] = v.Interface()
	})
	return result
}

// PrefixColumns qualifies each column with a table alias.
func PrefixColumns(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fmt.Sprintf("%s.%s", alias, c)
	}
	return out
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return v
}

func walkColumns(v reflect.Value, fn func(column string, field reflect.Value)) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		tag := field.Tag.Get(ColumnTag)
		if tag == "-" {
			continue
		}

		if tag == "" {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walkColumns(v.Field(i), fn)
			}
			continue
		}

		fn(tag, v.Field(i))
	}
}
