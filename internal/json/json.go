// Package json 统一项目内的 JSON 编解码入口，底层使用 bytedance/sonic 的标准库兼容配置。
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// MarshalString 返回 v 的 JSON 文本，出错时返回错误描述，便于直接写入日志。
func MarshalString(v any) string {
	s, err := api.MarshalToString(v)
	if err != nil {
		return "<json: " + err.Error() + ">"
	}
	return s
}
