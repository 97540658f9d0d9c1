package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDataDoesNotMutateShared(t *testing.T) {
	c := ErrorNoteNotFound.WithData("x").WithDetails("d1", "d2")

	assert.True(t, c.HaveData())
	assert.Equal(t, []string{"d1", "d2"}, c.Details())
	assert.False(t, ErrorNoteNotFound.HaveData())
	assert.False(t, ErrorNoteNotFound.HaveDetails())
	assert.Equal(t, ErrorNoteNotFound.Code(), c.Code())
}

func TestLang(t *testing.T) {
	defer SetGlobalDefaultLang(FallbackLang)

	assert.Equal(t, "Note not found", ErrorNoteNotFound.Msg())

	assert.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "笔记不存在", ErrorNoteNotFound.Msg())
	assert.Equal(t, "Note not found", ErrorNoteNotFound.Lang.In("en"))

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, FallbackLang, GetGlobalDefaultLang())
}

func TestDuplicateCodePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewError(ErrorNoteNotFound.Code(), lang{en: "dup"})
	})
	assert.NotEmpty(t, Registered())
}

func TestCodeIsError(t *testing.T) {
	var err error = ErrorNoteContentEmpty
	assert.Contains(t, err.Error(), "Empty Note")
	assert.False(t, ErrorNoteContentEmpty.Status())
	assert.True(t, Success.Status())
}
