package signage

import "strings"

// NormalizeKind converts a requested kind name to its canonical registry
// form: "photo-gallery", "photo_gallery" and "photoGallery" all become
// "PhotoGallery". Inner casing of each segment is preserved past the first
// letter, so "RssFeed" survives a round trip.
func NormalizeKind(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(strings.ToUpper(seg[:1]))
		b.WriteString(seg[1:])
	}
	return b.String()
}
