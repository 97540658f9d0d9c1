// Package validator wires go-playground/validator into gin binding
// Package validator 将 go-playground/validator 接入 gin 参数绑定
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CustomValidator binding.StructValidator backed by validator/v10
type CustomValidator struct {
	Once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

var _ binding.StructValidator = (*CustomValidator)(nil)

// ValidateStruct validates structs and pointers to structs, other kinds pass
func (v *CustomValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.Validate.Struct(obj)
}

// Engine returns the underlying *validator.Validate
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.Once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
		RegisterCustom(v.Validate)
	})
}

// RegisterCustom registers the service specific rules
//
//	tag_list   comma separated hashtag paths, each must satisfy the tag grammar
//	tag_path   a single hashtag path
func RegisterCustom(v *validator.Validate) {
	_ = v.RegisterValidation("tag_path", func(fl validator.FieldLevel) bool {
		_, ok := util.NormalizeTag(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("tag_list", func(fl validator.FieldLevel) bool {
		for _, item := range strings.Split(fl.Field().String(), ",") {
			if strings.TrimSpace(item) == "" {
				continue
			}
			if _, ok := util.NormalizeTag(item); !ok {
				return false
			}
		}
		return true
	})
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}
