package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
)

// StructAssign copies fields with matching names from src into dst
// StructAssign 将 src 中同名字段的值复制到 dst
func StructAssign(src any, dst any) error {
	return copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
}

// StructToMap converts a struct into a map through its json tags
// StructToMap 通过 json 标签将结构体转换为 map
func StructToMap(param any) (map[string]any, error) {
	raw, err := sonic.Marshal(param)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if err := sonic.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
