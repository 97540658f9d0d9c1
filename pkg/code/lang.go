package code

import (
	"errors"
)

// lang holds the English and Chinese text of a message
// lang 存储消息的英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

// FallbackLang is used when the selected language has no text
const FallbackLang = "en"

var lng = FallbackLang

// GetMessage returns the message in the global language, falling back to English
// GetMessage 按全局语言返回消息，缺失时回退到英文
func (l lang) GetMessage() string {
	return l.In(lng)
}

// In returns the message in the given language
// In 返回指定语言的消息
func (l lang) In(language string) string {
	switch language {
	case "zh_cn", "zh":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	return l.en
}

// GetSupportedLanguages lists the language keys accepted by SetGlobalDefaultLang
func GetSupportedLanguages() []string {
	return []string{"en", "zh_cn"}
}

// SetGlobalDefaultLang sets the global language; unknown values reset it to English
// SetGlobalDefaultLang 设置全局语言，未知值重置为英文
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if l == language {
			lng = language
			return nil
		}
	}
	lng = FallbackLang
	return errors.New("unsupported language type, set defaulting to " + FallbackLang)
}

// GetGlobalDefaultLang returns the global language
func GetGlobalDefaultLang() string {
	return lng
}
