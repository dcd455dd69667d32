package loader

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// markdownToText renders markdown to HTML and strips the tags, leaving plain
// text for embedding. Plain-text input passes through unchanged apart from
// paragraph normalization.
func markdownToText(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	text := tagPattern.ReplaceAllString(buf.String(), "")
	return strings.TrimSpace(html.UnescapeString(text)), nil
}
