package render

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// Table columns come from exported struct fields, named by their json tag.
// A table tag changes how a column is shown:
//
//	table:"-"      hidden
//	table:"epoch"  unix seconds or milliseconds, shown as RFC 3339 UTC
//	table:"flag"   bool shown as "yes" or left blank
type column struct {
	name   string
	field  int
	format string
}

// epochMillisThreshold separates millisecond from second timestamps.
// Second values above it lie past the year 5000.
const epochMillisThreshold = 100_000_000_000

func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		format := f.Tag.Get("table")
		if format == "-" {
			continue
		}
		cols = append(cols, column{name: columnName(f), field: i, format: format})
	}
	return cols
}

func columnName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func (r *Renderer) renderTable(data any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	v := indirect(reflect.ValueOf(data))

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			fmt.Fprintln(w, "(no results)")
			break
		}
		writeRows(w, v)
	case reflect.Struct:
		for _, col := range columnsOf(v.Type()) {
			fmt.Fprintf(w, "%s:\t%s\n", col.name, cellText(v.Field(col.field), col.format))
		}
	case reflect.Map:
		for _, key := range sortedKeys(v) {
			fmt.Fprintf(w, "%v:\t%s\n", key.Interface(), cellText(v.MapIndex(key), ""))
		}
	default:
		fmt.Fprintln(w, data)
	}
	return w.Flush()
}

// writeRows writes a header and one line per element. Struct elements get a
// column per field; anything else is a single value column.
func writeRows(w io.Writer, v reflect.Value) {
	first := indirect(v.Index(0))
	if first.Kind() != reflect.Struct {
		fmt.Fprintln(w, "value")
		for i := range v.Len() {
			fmt.Fprintln(w, cellText(v.Index(i), ""))
		}
		return
	}

	cols := columnsOf(first.Type())
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = col.name
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))

	for i := range v.Len() {
		row := indirect(v.Index(i))
		for j, col := range cols {
			cells[j] = ""
			if row.IsValid() {
				cells[j] = cellText(row.Field(col.field), col.format)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func cellText(v reflect.Value, format string) string {
	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return ""
	}

	switch {
	case format == "epoch" && v.CanInt():
		return formatEpoch(v.Int())
	case format == "flag" && v.Kind() == reflect.Bool:
		if v.Bool() {
			return "yes"
		}
		return ""
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return t.UTC().Format(time.RFC3339)
		}
		return "{...}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

// formatEpoch renders a provider timestamp. Zero means unset.
func formatEpoch(n int64) string {
	if n == 0 {
		return ""
	}
	var t time.Time
	if n >= epochMillisThreshold {
		t = time.UnixMilli(n)
	} else {
		t = time.Unix(n, 0)
	}
	return t.UTC().Format(time.RFC3339)
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}

// indirect dereferences pointers and interfaces. A nil one yields the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
