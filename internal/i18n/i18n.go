package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// LocaleRU 默认语言
	LocaleRU = "ru"
	// LocaleEN 英文
	LocaleEN = "en"

	// HeaderLocale 显式指定语言的请求头
	HeaderLocale = "X-Locale"
)

var matcher = language.NewMatcher([]language.Tag{
	language.Russian,
	language.English,
})

// ResolveLocale 依次读取 lang 查询参数、X-Locale、Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleRU
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return Match(lang)
	}
	if lang := strings.TrimSpace(c.GetHeader(HeaderLocale)); lang != "" {
		return Match(lang)
	}
	if accept := strings.TrimSpace(c.GetHeader("Accept-Language")); accept != "" {
		return Match(accept)
	}
	return LocaleRU
}

// Match 把任意语言标签归一到受支持的语言
func Match(raw string) string {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return LocaleRU
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	if base.String() == LocaleEN {
		return LocaleEN
	}
	return LocaleRU
}

// T 翻译消息键，缺失时回退到俄文，再回退到键本身
func T(locale, key string) string {
	if msg, ok := messages[locale][key]; ok {
		return msg
	}
	if msg, ok := messages[LocaleRU][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
