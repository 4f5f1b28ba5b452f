package excelexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Bag is a dynamic row: an ordered set of key/value pairs. Columns inferred
// from a Bag follow its insertion order.
type Bag struct {
	keys   []string
	values map[string]interface{}
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]interface{})}
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (b *Bag) Set(key string, v interface{}) *Bag {
	if b.values == nil {
		b.values = make(map[string]interface{})
	}
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = v
	return b
}

// Lookup returns the value stored under key.
func (b *Bag) Lookup(key string) (interface{}, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (b *Bag) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of entries.
func (b *Bag) Len() int {
	return len(b.keys)
}

// MarshalJSON encodes the bag as an object, keeping key order.
func (b *Bag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(b.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
// Integral numbers decode as int64, other numbers as float64.
func (b *Bag) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("bag: expected JSON object, got %v", tok)
	}
	*b = Bag{values: make(map[string]interface{})}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("bag: expected object key, got %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("bag: decode %q: %w", key, err)
		}
		b.Set(key, normalizeJSONValue(v))
	}
	_, err = dec.Token()
	return err
}

// DecodeBags decodes a JSON array of objects into bags. A null element is
// an error.
func DecodeBags(data []byte) ([]*Bag, error) {
	var rows []*Bag
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("decode rows: element %d: %w", i, ErrNilRow)
		}
	}
	return rows, nil
}

func normalizeJSONValue(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// dynamicRow is a row resolved by key instead of by extractor.
type dynamicRow interface {
	Lookup(key string) (interface{}, bool)
}

type mapRow map[string]interface{}

func (m mapRow) Lookup(key string) (interface{}, bool) {
	v, ok := m[key]
	return v, ok
}

// asDynamic reports whether row is a Bag or a string-keyed map.
func asDynamic(row interface{}) (dynamicRow, bool) {
	switch r := row.(type) {
	case *Bag:
		if r == nil {
			return nil, false
		}
		return r, true
	case Bag:
		return &r, true
	case map[string]interface{}:
		return mapRow(r), true
	}
	return nil, false
}

// dynamicKeys returns the column order of a dynamic row.
func dynamicKeys(row interface{}) []string {
	switch r := row.(type) {
	case *Bag:
		return r.Keys()
	case Bag:
		return r.Keys()
	case map[string]interface{}:
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

// BagsFromStructs converts a slice of structs into bags, promoting the entries
// of the map field mapFieldName to top-level keys at the position of that
// field. Map keys are the sorted union over all rows; a row lacking a key
// holds nil for it, so every bag has the same keys.
func BagsFromStructs(data interface{}, mapFieldName string) ([]*Bag, error) {
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("data must be a slice")
	}
	elemType := val.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("slice element must be a struct")
	}
	mapField, ok := elemType.FieldByName(mapFieldName)
	if !ok {
		return nil, fmt.Errorf("field %s not found in struct", mapFieldName)
	}
	if mapField.Type.Kind() != reflect.Map || mapField.Type.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("field %s is not a string-keyed map", mapFieldName)
	}

	keysSet := make(map[string]bool)
	for i := 0; i < val.Len(); i++ {
		m := val.Index(i).FieldByIndex(mapField.Index)
		iter := m.MapRange()
		for iter.Next() {
			keysSet[iter.Key().String()] = true
		}
	}
	sortedKeys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	bags := make([]*Bag, val.Len())
	for i := 0; i < val.Len(); i++ {
		item := val.Index(i)
		bag := NewBag()
		for j := 0; j < elemType.NumField(); j++ {
			f := elemType.Field(j)
			if f.PkgPath != "" {
				continue
			}
			if f.Name != mapFieldName {
				bag.Set(f.Name, item.Field(j).Interface())
				continue
			}
			m := item.Field(j)
			for _, key := range sortedKeys {
				var v interface{}
				if !m.IsNil() {
					if mv := m.MapIndex(reflect.ValueOf(key).Convert(f.Type.Key())); mv.IsValid() {
						v = mv.Interface()
					}
				}
				bag.Set(key, v)
			}
		}
		bags[i] = bag
	}
	return bags, nil
}
