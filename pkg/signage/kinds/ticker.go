package kinds

import (
	"context"
	"html"

	"github.com/placard/placard/pkg/signage"
)

// tickerKind is plain scrolling text. It defines no custom actions.
func tickerKind() signage.KindDescriptor {
	return signage.KindDescriptor{
		Name: "Ticker",
		New: func() *signage.Content {
			return &signage.Content{Kind: "Ticker"}
		},
		Fields: []string{"name", "duration", "data", "start_time", "end_time"},
		Render: func(ctx context.Context, content *signage.Content, params signage.RenderParams) (*signage.RenderedFile, error) {
			return &signage.RenderedFile{
				FileName: content.Name + ".txt",
				FileType: "text/plain; charset=utf-8",
				Data:     []byte(content.Data),
			}, nil
		},
		Preview: func(data string) string {
			return "<p>" + html.EscapeString(data) + "</p>"
		},
	}
}
