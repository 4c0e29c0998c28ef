package knowledge

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdown
}

// RenderHTML converts article markdown into HTML. Raw HTML in the source is omitted.
func RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
