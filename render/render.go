// Package render turns a Markdown research report into sanitized HTML and
// inspects the result.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/renameio/v2"
	"github.com/microcosm-cc/bluemonday"
)

// HTML converts Markdown to HTML and sanitizes the result.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.Render(doc, renderer)

	return bluemonday.UGCPolicy().SanitizeBytes(out)
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
{{.Body}}
</article>
</body>
</html>
`))

// Document renders md as a standalone HTML page titled title.
func Document(title, md string) ([]byte, error) {
	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(HTML(md)), // #nosec G203 sanitized by HTML
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders md as a page and writes it atomically to path.
func WriteHTML(path, title, md string) error {
	doc, err := Document(title, md)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Heading is one entry of a report outline.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Outline lists the headings of the rendered report in document order.
func Outline(md string) ([]Heading, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(HTML(md)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var headings []Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		headings = append(headings, Heading{
			Level: int(goquery.NodeName(s)[1] - '0'),
			ID:    id,
			Text:  strings.TrimSpace(s.Text()),
		})
	})
	return headings, nil
}

// Links returns the distinct absolute link targets of the rendered report.
func Links(md string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(HTML(md)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return
		}
		if !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
	})
	return links, nil
}
