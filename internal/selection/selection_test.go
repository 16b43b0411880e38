package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_Multi(t *testing.T) {
	tr := New(Multi)

	assert.True(t, tr.Select("a", true))
	assert.True(t, tr.Select("b", true))
	assert.False(t, tr.Select("b", true), "reselecting is not a change")
	assert.Equal(t, []string{"a", "b"}, tr.IDs())

	assert.True(t, tr.Select("a", false))
	assert.False(t, tr.Select("a", false))
	assert.False(t, tr.Has("a"))
	assert.True(t, tr.Has("b"))
}

func TestTracker_SingleReplacesPrior(t *testing.T) {
	tr := New(Single)

	assert.True(t, tr.Select("a", true))
	assert.True(t, tr.Select("b", true))
	assert.Equal(t, []string{"b"}, tr.IDs())
	assert.False(t, tr.Select("b", true))

	assert.False(t, tr.SelectAll([]string{"x", "y"}, true), "single mode refuses select-all")
	assert.Equal(t, 1, tr.Len())
	assert.True(t, tr.SelectAll([]string{"b"}, false))
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_SelectAllClearRetain(t *testing.T) {
	tr := New(Multi)

	assert.True(t, tr.SelectAll([]string{"1", "2", "3"}, true))
	assert.False(t, tr.SelectAll([]string{"1", "2"}, true))
	assert.True(t, tr.SelectAll([]string{"2"}, false))
	assert.Equal(t, []string{"1", "3"}, tr.IDs())

	assert.True(t, tr.Retain([]string{"3", "9"}))
	assert.Equal(t, []string{"3"}, tr.IDs())
	assert.False(t, tr.Retain([]string{"3"}))

	assert.True(t, tr.Clear())
	assert.False(t, tr.Clear())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Single, ParseMode(" Single "))
	assert.Equal(t, Multi, ParseMode("multi"))
	assert.Equal(t, Multi, ParseMode(""))
	assert.Equal(t, "single", Single.String())
}
