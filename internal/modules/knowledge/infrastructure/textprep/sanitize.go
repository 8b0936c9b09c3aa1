package textprep

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"BotDesk/internal/modules/knowledge/domain/entity"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockTags      = regexp.MustCompile(`(?i)<br\s*/?>|</?p>|</?div>|</?pre>|</?li>|</?h[1-6]>|</?tr>`)
	multiBlankLine = regexp.MustCompile(`\n\s*\n+`)

	strict   = bluemonday.StrictPolicy()
	markdown = goldmark.New()
)

// Normalize 把 markdown/html 正文转成适合切片和向量化的纯文本，text 原样返回
func Normalize(format, body string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case entity.DocFormatMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(body), &buf); err != nil {
			return body
		}
		return stripHTML(buf.String())
	case entity.DocFormatHTML:
		return stripHTML(body)
	default:
		return body
	}
}

func stripHTML(s string) string {
	s = blockTags.ReplaceAllString(s, "\n")
	s = strict.Sanitize(s)
	s = html.UnescapeString(s)
	s = multiBlankLine.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
