package feature

import "strings"

// 词面前缀：类别 token 与自由文本 token 共用一个联合词表，
// 前缀保证"Drama 题材"与简介里的 "drama" 是两个不同维度。
const (
	PrefixGenre    = "genre:"
	PrefixDirector = "director:"
	PrefixCast     = "cast:"
)

// 简介/标签分词用的停用词，够用即可，不追求完整词表。
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "her": {},
	"his": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "she": {}, "that": {}, "the": {}, "their": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "when": {}, "who": {},
	"will": {}, "with": {},
}

// TokenizeText 把简介/标签文本切成小写词元：按非字母数字切分，
// 去停用词，丢弃单字符词。
func TokenizeText(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// CategoricalToken 把类别值规整为带前缀的 token，
// 例如 ("genre:", "Science Fiction") -> "genre:science_fiction"。
func CategoricalToken(prefix, value string) string {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return ""
	}
	v = strings.Join(strings.Fields(v), "_")
	return prefix + v
}

// TokenField 返回 token 所属的字段维度（genre / director / cast / synopsis），
// 解释层按它聚合归因。
func TokenField(token string) string {
	switch {
	case strings.HasPrefix(token, PrefixGenre):
		return "genre"
	case strings.HasPrefix(token, PrefixDirector):
		return "director"
	case strings.HasPrefix(token, PrefixCast):
		return "cast"
	default:
		return "synopsis"
	}
}

// TokenValue 去掉 token 的字段前缀，还原可读词面（下划线转空格）。
func TokenValue(token string) string {
	for _, p := range []string{PrefixGenre, PrefixDirector, PrefixCast} {
		if strings.HasPrefix(token, p) {
			return strings.ReplaceAll(strings.TrimPrefix(token, p), "_", " ")
		}
	}
	return token
}
