package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomValidator(t *testing.T) {
	v := NewCustomValidator()

	type filter struct {
		Tags string `binding:"omitempty,tag_list"`
		Tag  string `binding:"omitempty,tag_path"`
	}

	tests := []struct {
		name  string
		in    filter
		valid bool
	}{
		{name: "empty", in: filter{}, valid: true},
		{name: "list", in: filter{Tags: "work, #a/b"}, valid: true},
		{name: "bad list item", in: filter{Tags: "work,two words"}, valid: false},
		{name: "single", in: filter{Tag: "产品/规划"}, valid: true},
		{name: "bad single", in: filter{Tag: "a//b"}, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(&tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.NoError(t, v.ValidateStruct("not a struct"))
	assert.NotNil(t, v.Engine())
}
