package kinds

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/placard/placard/pkg/signage"
)

// rssItem is the subset of an RSS 2.0 item the renderer cares about.
type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssDocument struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

// rssFeedKind renders a remote RSS feed as an HTML list. Data holds the
// feed URL.
func rssFeedKind(client *http.Client) signage.KindDescriptor {
	return signage.KindDescriptor{
		Name: "RssFeed",
		New: func() *signage.Content {
			return &signage.Content{Kind: "RssFeed"}
		},
		Fields: []string{"name", "duration", "data", "start_time", "end_time"},
		Render: func(ctx context.Context, content *signage.Content, params signage.RenderParams) (*signage.RenderedFile, error) {
			doc, err := fetchFeed(ctx, client, content.Data)
			if err != nil {
				return nil, err
			}

			maxItems := len(doc.Channel.Items)
			// max_items caps the rendered list.
			if v, ok := params["max_items"]; ok {
				if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < maxItems {
					maxItems = n
				}
			}

			var b strings.Builder
			fmt.Fprintf(&b, "<h1>%s</h1>\n<ul>\n", html.EscapeString(doc.Channel.Title))
			for _, item := range doc.Channel.Items[:maxItems] {
				fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n",
					html.EscapeString(item.Link), html.EscapeString(item.Title))
			}
			b.WriteString("</ul>\n")

			return &signage.RenderedFile{
				FileName: content.Name + ".html",
				FileType: "text/html; charset=utf-8",
				Data:     []byte(b.String()),
			}, nil
		},
		Actions: map[string]signage.ActionFunc{
			// refresh reads no Values keys; it re-fetches the feed and
			// reports the item count.
			"refresh": func(ctx context.Context, content *signage.Content, params signage.ActionParams) (string, error) {
				doc, err := fetchFeed(ctx, client, content.Data)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d items", len(doc.Channel.Items)), nil
			},
		},
		Preview: func(data string) string {
			if data == "" {
				return "<p>No feed URL</p>"
			}
			return fmt.Sprintf("<a href=%q>%s</a>", html.EscapeString(data), html.EscapeString(data))
		},
	}
}

func fetchFeed(ctx context.Context, client *http.Client, url string) (*rssDocument, error) {
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", url, err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return &doc, nil
}
