// Package i18n 提供接口提示语的多语言翻译
package i18n

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"
)

var supportedTags = []language.Tag{
	language.MustParse(LocaleZH),
	language.MustParse(LocaleTW),
	language.MustParse(LocaleEN),
}

var matcher = language.NewMatcher(supportedTags)

var defaultLocale atomic.Value

func init() {
	defaultLocale.Store(LocaleZH)
}

// SetDefaultLocale 设置无法识别请求语言时的回退语言
func SetDefaultLocale(locale string) {
	if normalized, ok := NormalizeLocale(locale); ok {
		defaultLocale.Store(normalized)
	}
}

// DefaultLocale 当前回退语言
func DefaultLocale() string {
	if value, ok := defaultLocale.Load().(string); ok && value != "" {
		return value
	}
	return LocaleZH
}

// ResolveLocale 依次从 lang 参数、X-Locale 头与 Accept-Language 头解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale()
	}
	if locale, ok := NormalizeLocale(c.Query("lang")); ok {
		return locale
	}
	if locale, ok := NormalizeLocale(c.GetHeader("X-Locale")); ok {
		return locale
	}
	return MatchAcceptLanguage(c.GetHeader("Accept-Language"))
}

// MatchAcceptLanguage 按 Accept-Language 头匹配支持的语言
func MatchAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale()
	}
	return supportedTags[index].String()
}

// NormalizeLocale 将语言标记归一化为支持的语言
func NormalizeLocale(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return supportedTags[index].String(), true
}

// T 翻译消息 key，缺失时依次回退到默认语言与 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if messages, ok := catalog[DefaultLocale()]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// Reason 翻译不满足条件的原因码
func Reason(locale, reason string) string {
	return T(locale, "reason."+reason)
}
