package kinds

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/placard/placard/pkg/signage"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// htmlTextKind holds an HTML snippet rendered as-is.
func htmlTextKind() signage.KindDescriptor {
	return signage.KindDescriptor{
		Name: "HtmlText",
		New: func() *signage.Content {
			return &signage.Content{Kind: "HtmlText"}
		},
		Fields: []string{"name", "duration", "data", "start_time", "end_time"},
		Render: func(ctx context.Context, content *signage.Content, params signage.RenderParams) (*signage.RenderedFile, error) {
			return &signage.RenderedFile{
				FileName: content.Name + ".html",
				FileType: "text/html; charset=utf-8",
				Data:     []byte(content.Data),
			}, nil
		},
		Actions: map[string]signage.ActionFunc{
			// word_count reads no Values keys.
			"word_count": func(ctx context.Context, content *signage.Content, params signage.ActionParams) (string, error) {
				text := tagPattern.ReplaceAllString(content.Data, " ")
				return fmt.Sprintf("%d", len(strings.Fields(text))), nil
			},
		},
		Preview: func(data string) string {
			return data
		},
	}
}
