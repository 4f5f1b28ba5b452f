package excelexport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagKeepsInsertionOrder(t *testing.T) {
	b := NewBag().Set("z", 1).Set("a", 2).Set("z", 3)
	assert.Equal(t, []string{"z", "a"}, b.Keys())
	assert.Equal(t, 2, b.Len())
	v, ok := b.Lookup("z")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = b.Lookup("missing")
	assert.False(t, ok)
}

func TestBagJSON(t *testing.T) {
	rows, err := DecodeBags([]byte(`[{"name":"A","id":1,"price":2.5,"ok":true,"none":null,"tags":["x"]}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	b := rows[0]
	assert.Equal(t, []string{"name", "id", "price", "ok", "none", "tags"}, b.Keys())
	id, _ := b.Lookup("id")
	assert.Equal(t, int64(1), id)
	price, _ := b.Lookup("price")
	assert.Equal(t, 2.5, price)
	none, ok := b.Lookup("none")
	assert.True(t, ok)
	assert.Nil(t, none)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A","id":1,"price":2.5,"ok":true,"none":null,"tags":["x"]}`, string(out))
	assert.Equal(t, `{"name":"A","id":1,"price":2.5,"ok":true,"none":null,"tags":["x"]}`, string(out))
}

func TestDecodeBagsRejectsNonObjects(t *testing.T) {
	_, err := DecodeBags([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = DecodeBags([]byte(`{"a":1}`))
	assert.Error(t, err)

	rows, err := DecodeBags([]byte(`[null,{"a":1}]`))
	assert.ErrorIs(t, err, ErrNilRow)
	assert.ErrorContains(t, err, "element 0")
	assert.Nil(t, rows)
}

type withMeta struct {
	Name  string
	Meta  map[string]interface{}
	Value int
}

func TestBagsFromStructs(t *testing.T) {
	data := []withMeta{
		{"A", map[string]interface{}{"foo": "bar", "baz": 123}, 1},
		{"B", map[string]interface{}{"foo": "qux", "extra": true}, 2},
		{"C", nil, 3},
	}

	bags, err := BagsFromStructs(data, "Meta")
	require.NoError(t, err)
	require.Len(t, bags, 3)

	for _, b := range bags {
		assert.Equal(t, []string{"Name", "baz", "extra", "foo", "Value"}, b.Keys())
	}

	foo, _ := bags[0].Lookup("foo")
	assert.Equal(t, "bar", foo)
	extra, ok := bags[0].Lookup("extra")
	assert.True(t, ok)
	assert.Nil(t, extra)
	value, _ := bags[1].Lookup("Value")
	assert.Equal(t, 2, value)
	foo, ok = bags[2].Lookup("foo")
	assert.True(t, ok)
	assert.Nil(t, foo)

	doc, err := GenerateInferred("meta", bags)
	require.NoError(t, err)
	f := openDocument(t, doc)
	assert.Equal(t, []string{"Name", "baz", "extra", "foo", "Value"}, rowValues(t, f, "meta", 1, 5))
	assert.Equal(t, []string{"B", "", "TRUE", "qux", "2"}, rowValues(t, f, "meta", 3, 5))
}

func TestBagsFromStructsErrors(t *testing.T) {
	_, err := BagsFromStructs(withMeta{}, "Meta")
	assert.Error(t, err)
	_, err = BagsFromStructs([]int{1}, "Meta")
	assert.Error(t, err)
	_, err = BagsFromStructs([]withMeta{}, "Missing")
	assert.Error(t, err)
	_, err = BagsFromStructs([]withMeta{}, "Name")
	assert.Error(t, err)
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 5.0, textWidth("hello"))
	assert.Equal(t, 4.0, textWidth("日本"))
	assert.Equal(t, 6.0, textWidth("ab\nlonger"))
}
