package kinds

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/placard/placard/pkg/signage"
)

// imageKind renders an attached media file inline. Media bytes live in the
// media store once persisted; inline bytes are served directly for content
// that has not passed through a store.
func imageKind(media signage.MediaStore) signage.KindDescriptor {
	return signage.KindDescriptor{
		Name: "Image",
		New: func() *signage.Content {
			return &signage.Content{Kind: "Image"}
		},
		Fields: []string{"name", "duration", "start_time", "end_time"},
		Render: func(ctx context.Context, content *signage.Content, params signage.RenderParams) (*signage.RenderedFile, error) {
			if len(content.Media) == 0 {
				return nil, errors.New("image content has no media")
			}
			m := content.Media[0]

			data := m.Data
			if len(data) == 0 {
				if m.ObjectKey == "" || media == nil {
					return nil, errors.New("image media has no stored bytes")
				}
				rc, err := media.Download(ctx, m.ObjectKey)
				if err != nil {
					return nil, fmt.Errorf("download media %s: %w", m.ObjectKey, err)
				}
				defer rc.Close()
				data, err = io.ReadAll(rc)
				if err != nil {
					return nil, fmt.Errorf("read media %s: %w", m.ObjectKey, err)
				}
			}

			fileName := m.FileName
			if fileName == "" {
				fileName = content.Name
			}
			fileType := m.FileType
			if fileType == "" {
				fileType = "application/octet-stream"
			}
			return &signage.RenderedFile{FileName: fileName, FileType: fileType, Data: data}, nil
		},
		Actions: map[string]signage.ActionFunc{
			// describe reads no Values keys.
			"describe": func(ctx context.Context, content *signage.Content, params signage.ActionParams) (string, error) {
				if len(content.Media) == 0 {
					return "", errors.New("no media to describe")
				}
				m := content.Media[0]
				return fmt.Sprintf("%s (%s, %d bytes)", m.FileName, m.FileType, m.FileSize), nil
			},
		},
		Preview: func(data string) string {
			if data == "" {
				return "<p>No image data</p>"
			}
			return fmt.Sprintf("<img src=%q alt=\"preview\" />", html.EscapeString(data))
		},
	}
}
