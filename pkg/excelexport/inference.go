package excelexport

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

// fieldKind classifies a struct field for column inference.
type fieldKind int

const (
	kindPrimitive fieldKind = iota
	kindDateTime
	kindNullableDateTime
	kindNullablePrimitive
	kindNullableComposite
	kindComposite
)

func (k fieldKind) String() string {
	switch k {
	case kindPrimitive:
		return "primitive"
	case kindDateTime:
		return "datetime"
	case kindNullableDateTime:
		return "nullable-datetime"
	case kindNullablePrimitive:
		return "nullable-primitive"
	case kindNullableComposite:
		return "nullable-composite"
	case kindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// extractorRule builds the reader of one field. A nil rule drops the field.
type extractorRule func(field reflect.StructField, cfg *config) func(v reflect.Value) (CellData, error)

// fieldKindRules maps every field kind to its column rule.
var fieldKindRules = map[fieldKind]extractorRule{
	kindPrimitive:         rawRule,
	kindDateTime:          dateRule,
	kindNullableDateTime:  dateRule,
	kindNullablePrimitive: rawRule,
	kindNullableComposite: nil,
	kindComposite:         nil,
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	nullTimeType = reflect.TypeOf(sql.NullTime{})
	valuerType   = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// basicTypes holds the predeclared type of each primitive kind.
var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeOf(false),
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Float32: reflect.TypeOf(float32(0)),
	reflect.Float64: reflect.TypeOf(float64(0)),
	reflect.String:  reflect.TypeOf(""),
}

func isPrimitive(t reflect.Type) bool {
	_, ok := basicTypes[t.Kind()]
	return ok
}

// classifyField returns the kind of a struct field type. Pointers and
// database/sql null wrappers count as nullable.
func classifyField(t reflect.Type) fieldKind {
	switch {
	case t == timeType:
		return kindDateTime
	case t.Kind() == reflect.Ptr:
		elem := t.Elem()
		switch {
		case elem == timeType:
			return kindNullableDateTime
		case isPrimitive(elem):
			return kindNullablePrimitive
		default:
			return kindNullableComposite
		}
	case t == nullTimeType:
		return kindNullableDateTime
	case t.Implements(valuerType):
		return kindNullablePrimitive
	case isPrimitive(t):
		return kindPrimitive
	default:
		return kindComposite
	}
}

// readField returns the plain value of v, unwrapping pointers and
// driver.Valuer implementations. Null wrappers yield nil.
func readField(v reflect.Value) (interface{}, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	} else if v.Type().Implements(valuerType) {
		dv, err := v.Interface().(driver.Valuer).Value()
		if err != nil {
			return nil, err
		}
		return dv, nil
	}
	if t, ok := basicTypes[v.Kind()]; ok && v.Type() != t {
		return v.Convert(t).Interface(), nil
	}
	return v.Interface(), nil
}

// readPath reads a possibly promoted field. A field reached through a nil
// embedded pointer reads as nil.
func readPath(v reflect.Value, field reflect.StructField) (interface{}, error) {
	fv, err := v.FieldByIndexErr(field.Index)
	if err != nil {
		return nil, nil
	}
	val, err := readField(fv)
	if err != nil {
		return nil, fmt.Errorf("read field %s: %w", field.Name, err)
	}
	return val, nil
}

func rawRule(field reflect.StructField, _ *config) func(v reflect.Value) (CellData, error) {
	return func(v reflect.Value) (CellData, error) {
		val, err := readPath(v, field)
		if err != nil {
			return CellData{}, err
		}
		return Plain(val), nil
	}
}

func dateRule(field reflect.StructField, cfg *config) func(v reflect.Value) (CellData, error) {
	layout := cfg.dateLayout
	return func(v reflect.Value) (CellData, error) {
		val, err := readPath(v, field)
		if err != nil {
			return CellData{}, err
		}
		if t, ok := val.(time.Time); ok {
			return Plain(t.Format(layout)), nil
		}
		return Plain(val), nil
	}
}

// InferColumns derives columns from the first row.
//
// A dynamic first row (*Bag or map[string]interface{}) yields one column per
// key, without extractor; cells are then looked up by header. A struct first
// row yields one column per exported field in declaration order, fields
// promoted from embedded structs included at the embedding position, except
// composite fields, which are skipped. Every row must share the first row's
// struct type. Empty input yields no columns.
func InferColumns[T any](rows []T, opts ...Option) ([]Column[T], error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cfg := applyOptions(opts)
	first := interface{}(rows[0])

	if _, ok := asDynamic(first); ok {
		keys := dynamicKeys(first)
		cols := make([]Column[T], len(keys))
		for i, k := range keys {
			cols[i] = Column[T]{Header: k}
		}
		return cols, nil
	}

	structType := reflect.TypeOf(first)
	for structType != nil && structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	if structType == nil || structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot infer columns from %T", first)
	}

	var cols []Column[T]
	for _, field := range reflect.VisibleFields(structType) {
		if isEmbeddedStruct(field) || !field.IsExported() {
			continue
		}
		rule := fieldKindRules[classifyField(field.Type)]
		if rule == nil {
			continue
		}
		read := rule(field, cfg)
		cols = append(cols, Column[T]{
			Header:  field.Name,
			Extract: structExtractor[T](structType, read),
		})
	}
	return cols, nil
}

// isEmbeddedStruct reports whether field embeds a struct whose fields are
// promoted; those fields get columns of their own.
func isEmbeddedStruct(field reflect.StructField) bool {
	if !field.Anonymous {
		return false
	}
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != timeType
}

func structExtractor[T any](structType reflect.Type, read func(reflect.Value) (CellData, error)) ExtractFunc[T] {
	return func(row T) (CellData, error) {
		v := reflect.ValueOf(interface{}(row))
		for v.IsValid() && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return CellData{}, ErrNilRow
			}
			v = v.Elem()
		}
		if !v.IsValid() {
			return CellData{}, ErrNilRow
		}
		if v.Type() != structType {
			return CellData{}, fmt.Errorf("row of type %s does not match inferred type %s", v.Type(), structType)
		}
		return read(v)
	}
}
