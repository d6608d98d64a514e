package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKeepsOrder(t *testing.T) {
	d := New().
		Set("zeta", "z").
		Set("alpha", "a").
		Set("mid", New().Set("inner", "i"))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Keys())
	assert.Equal(t, 3, d.Len())

	e, ok := d.Get("mid")
	require.True(t, ok)
	child, ok := e.Dict()
	require.True(t, ok)
	s, ok := child.Entries()[0].String()
	assert.True(t, ok)
	assert.Equal(t, "i", s)
}

func TestSetRecordsDuplicates(t *testing.T) {
	d := New().
		Set("greet", "Hi.").
		Set("greet", "Hello.")

	assert.Equal(t, 1, d.Len())
	e, _ := d.Get("greet")
	s, _ := e.String()
	assert.Equal(t, "Hi.", s, "first value wins")

	dups := d.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, "greet", dups[0].Key)
	assert.Equal(t, "Hello.", dups[0].Raw())
}

func TestFromMap(t *testing.T) {
	d := FromMap(map[string]any{
		"b": "two",
		"a": map[string]any{"c": "three"},
		"d": map[string]string{"e": "four"},
	})

	assert.Equal(t, []string{"a", "b", "d"}, d.Keys())

	a, _ := d.Get("a")
	child, ok := a.Dict()
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, child.Keys())

	dd, _ := d.Get("d")
	_, ok = dd.Dict()
	assert.True(t, ok)
}

func TestEntryTypes(t *testing.T) {
	var nilDict *Dictionary
	d := New().
		Set("num", 42).
		Set("nil", nilDict)

	num, _ := d.Get("num")
	_, ok := num.String()
	assert.False(t, ok)
	_, ok = num.Dict()
	assert.False(t, ok)
	assert.Equal(t, 42, num.Raw())

	n, _ := d.Get("nil")
	_, ok = n.Dict()
	assert.False(t, ok)
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	assert.Equal(t, 0, d.Len())
	assert.Nil(t, d.Keys())
	assert.Nil(t, d.Entries())
	_, ok := d.Get("a")
	assert.False(t, ok)
}
