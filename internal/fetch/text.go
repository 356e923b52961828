package fetch

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
	"canvas":   true,
	"template": true,
}

var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"li":         true,
	"section":    true,
	"article":    true,
	"main":       true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"header":     true,
	"footer":     true,
	"nav":        true,
	"br":         true,
	"ul":         true,
	"ol":         true,
	"tr":         true,
	"table":      true,
	"blockquote": true,
	"pre":        true,
}

// extractText reads at most maxBodyBytes of r, decodes it using the charset
// found in ctype or the document itself and returns the visible text. Inline
// text is joined on one line, block elements start a new one. Plain text
// documents keep their lines.
func extractText(r io.Reader, ctype string) (string, error) {
	r = io.LimitReader(r, maxBodyBytes)
	ur, err := charset.NewReader(r, ctype)
	if err != nil {
		ur = r
	}
	if mt, _, _ := mime.ParseMediaType(ctype); mt == "text/plain" {
		return plainLines(ur)
	}

	tokenizer := html.NewTokenizer(ur)
	skipDepth := 0
	spacePending := false
	var text strings.Builder

	atLineStart := func() bool {
		s := text.String()
		return len(s) == 0 || s[len(s)-1] == '\n'
	}
	writeNL := func() {
		spacePending = false
		if !atLineStart() {
			text.WriteByte('\n')
		}
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := strings.ToLower(string(name))
			if skipTags[tag] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockTags[tag] || skipTags[tag] {
				writeNL()
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := strings.ToLower(string(name))
			if skipTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[tag] || skipTags[tag] {
				writeNL()
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			raw := tokenizer.Text()
			fields := bytes.Fields(raw)
			if len(fields) == 0 {
				spacePending = spacePending || len(raw) > 0
				continue
			}
			if (spacePending || startsWithSpace(raw)) && !atLineStart() {
				text.WriteByte(' ')
			}
			text.Write(bytes.Join(fields, []byte{' '}))
			spacePending = endsWithSpace(raw)
		}
	}

	return tidy(text.String()), nil
}

func plainLines(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	lines := strings.Split(string(b), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return tidy(strings.Join(lines, "\n")), nil
}

func tidy(s string) string {
	out := strings.TrimSpace(s)
	if out == "" {
		return ""
	}
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out + "\n"
}

func startsWithSpace(b []byte) bool {
	r, _ := utf8.DecodeRune(b)
	return unicode.IsSpace(r)
}

func endsWithSpace(b []byte) bool {
	r, _ := utf8.DecodeLastRune(b)
	return unicode.IsSpace(r)
}
