package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrTo(t *testing.T) {
	assert.Equal(t, 12, StrTo(" 12 ").MustInt())
	assert.Equal(t, 0, StrTo("x").MustInt())
	assert.Equal(t, int64(9), StrTo("9").MustInt64())
	assert.Equal(t, []string{"a", "b/c"}, StrTo(" a, ,b/c,").List())
	assert.Nil(t, StrTo("").List())
}

func TestStructAssign(t *testing.T) {
	type src struct {
		ID   string
		Tags []string
		Skip int
	}
	type dst struct {
		ID   string
		Tags []string
	}

	s := src{ID: "n1", Tags: []string{"a"}}
	var d dst
	assert.NoError(t, StructAssign(&s, &d))
	assert.Equal(t, "n1", d.ID)

	s.Tags[0] = "changed"
	assert.Equal(t, []string{"a"}, d.Tags)
}

func TestStructToMap(t *testing.T) {
	m, err := StructToMap(struct {
		Title string `json:"title"`
	}{Title: "x"})
	assert.NoError(t, err)
	assert.Equal(t, "x", m["title"])
}
