package kinds_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/placard/placard/pkg/signage"
	"github.com/placard/placard/pkg/signage/kinds"
	memorystorage "github.com/placard/placard/pkg/signage/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinRegistry(t *testing.T, cfg kinds.Config) *signage.KindRegistry {
	t.Helper()
	reg := signage.NewKindRegistry("Image")
	require.NoError(t, kinds.RegisterBuiltins(reg, cfg))
	return reg
}

func TestRegisterBuiltins(t *testing.T) {
	reg := builtinRegistry(t, kinds.Config{})
	assert.Equal(t, []string{"HtmlText", "Image", "RssFeed", "Ticker"}, reg.Names())
}

func TestTickerKind(t *testing.T) {
	reg := builtinRegistry(t, kinds.Config{})
	desc, err := reg.Resolve("Ticker")
	require.NoError(t, err)

	t.Run("renders plain text", func(t *testing.T) {
		content := &signage.Content{Name: "News", Data: "scrolling text"}
		file, err := desc.Render(context.Background(), content, nil)
		require.NoError(t, err)
		assert.Equal(t, "News.txt", file.FileName)
		assert.Equal(t, "text/plain; charset=utf-8", file.FileType)
		assert.Equal(t, []byte("scrolling text"), file.Data)
	})

	t.Run("preview escapes markup", func(t *testing.T) {
		assert.Equal(t, "<p>&lt;svg&gt;</p>", desc.Preview("<svg>"))
	})

	t.Run("defines no actions", func(t *testing.T) {
		assert.Empty(t, desc.Actions)
	})
}

func TestHtmlTextKind(t *testing.T) {
	reg := builtinRegistry(t, kinds.Config{})
	desc, err := reg.Resolve("HtmlText")
	require.NoError(t, err)

	t.Run("renders html verbatim", func(t *testing.T) {
		content := &signage.Content{Name: "Blurb", Data: "<em>hi</em>"}
		file, err := desc.Render(context.Background(), content, nil)
		require.NoError(t, err)
		assert.Equal(t, "text/html; charset=utf-8", file.FileType)
		assert.Equal(t, []byte("<em>hi</em>"), file.Data)
	})

	t.Run("word_count strips tags", func(t *testing.T) {
		content := &signage.Content{Data: "<p>one <b>two</b> three</p>"}
		result, err := desc.Actions["word_count"](context.Background(), content, signage.ActionParams{})
		require.NoError(t, err)
		assert.Equal(t, "3", result)
	})
}

func TestImageKind(t *testing.T) {
	store := memorystorage.New()
	reg := builtinRegistry(t, kinds.Config{Media: store})
	desc, err := reg.Resolve("Image")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("renders inline bytes", func(t *testing.T) {
		content := &signage.Content{
			Name:  "Poster",
			Media: []signage.Media{{FileName: "p.png", FileType: "image/png", Data: []byte{1, 2}}},
		}
		file, err := desc.Render(ctx, content, nil)
		require.NoError(t, err)
		assert.Equal(t, "p.png", file.FileName)
		assert.Equal(t, "image/png", file.FileType)
		assert.Equal(t, []byte{1, 2}, file.Data)
	})

	t.Run("renders stored bytes through the media store", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "k/stored.png", bytes.NewReader([]byte{9, 9, 9})))
		content := &signage.Content{
			Media: []signage.Media{{FileName: "stored.png", FileType: "image/png", ObjectKey: "k/stored.png"}},
		}
		file, err := desc.Render(ctx, content, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{9, 9, 9}, file.Data)
	})

	t.Run("fails without media", func(t *testing.T) {
		_, err := desc.Render(ctx, &signage.Content{}, nil)
		assert.Error(t, err)
	})

	t.Run("describe reports media metadata", func(t *testing.T) {
		content := &signage.Content{
			Media: []signage.Media{{FileName: "p.png", FileType: "image/png", FileSize: 2}},
		}
		result, err := desc.Actions["describe"](ctx, content, signage.ActionParams{})
		require.NoError(t, err)
		assert.Equal(t, "p.png (image/png, 2 bytes)", result)
	})

	t.Run("preview without data", func(t *testing.T) {
		assert.Equal(t, "<p>No image data</p>", desc.Preview(""))
	})
}

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Campus News</title>
    <item><title>First</title><link>http://example.com/1</link></item>
    <item><title>Second</title><link>http://example.com/2</link></item>
    <item><title>Third</title><link>http://example.com/3</link></item>
  </channel>
</rss>`

func TestRssFeedKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	reg := builtinRegistry(t, kinds.Config{HTTPClient: server.Client()})
	desc, err := reg.Resolve("RssFeed")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("renders the feed as a list", func(t *testing.T) {
		content := &signage.Content{Name: "News", Data: server.URL}
		file, err := desc.Render(ctx, content, nil)
		require.NoError(t, err)
		html := string(file.Data)
		assert.Contains(t, html, "<h1>Campus News</h1>")
		assert.Contains(t, html, "First")
		assert.Contains(t, html, "Third")
	})

	t.Run("max_items caps the list", func(t *testing.T) {
		content := &signage.Content{Name: "News", Data: server.URL}
		file, err := desc.Render(ctx, content, signage.RenderParams{"max_items": "1"})
		require.NoError(t, err)
		html := string(file.Data)
		assert.Contains(t, html, "First")
		assert.NotContains(t, html, "Second")
	})

	t.Run("refresh reports the item count", func(t *testing.T) {
		content := &signage.Content{Data: server.URL}
		result, err := desc.Actions["refresh"](ctx, content, signage.ActionParams{})
		require.NoError(t, err)
		assert.Equal(t, "3 items", result)
	})

	t.Run("empty url fails", func(t *testing.T) {
		_, err := desc.Render(ctx, &signage.Content{}, nil)
		assert.Error(t, err)
	})

	t.Run("preview links the url", func(t *testing.T) {
		assert.Contains(t, desc.Preview("http://example.com/rss"), "http://example.com/rss")
		assert.Equal(t, "<p>No feed URL</p>", desc.Preview(""))
	})
}

