// Package format renders a response body for the terminal: JSON is
// pretty-printed, HTML becomes readable text with links kept inline.
package format

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/go2web/internal/logging"
)

// Formatter turns a (content type, body) pair into printable text.
type Formatter interface {
	Format(contentType, body string) string
	// WithBaseURL returns a Formatter that resolves relative links against base.
	WithBaseURL(base string) Formatter
}

// elements dropped before conversion; images are never rendered
const strippedElements = "img, picture, svg, video, audio, script, style, noscript, template, iframe"

var blankRuns = regexp.MustCompile(`\n{3,}`)

// TextFormatter is the default Formatter.
type TextFormatter struct {
	// BaseURL, when set, turns relative links into absolute ones.
	BaseURL string

	logger logging.Logger
}

func NewTextFormatter(logger logging.Logger) *TextFormatter {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &TextFormatter{logger: logger.With(logging.Field{Key: "component", Value: "format"})}
}

// WithBaseURL returns a copy of f that resolves relative links against base.
func (f *TextFormatter) WithBaseURL(base string) Formatter {
	c := *f
	c.BaseURL = base
	return &c
}

func (f *TextFormatter) Format(contentType, body string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return f.prettyJSON(body)
	case strings.HasPrefix(strings.TrimSpace(ct), "text/plain"):
		return body
	default:
		return f.htmlToText(body)
	}
}

// prettyJSON re-indents body with two spaces. Invalid JSON is returned as is.
func (f *TextFormatter) prettyJSON(body string) string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(strings.TrimSpace(body)), "", "  "); err != nil {
		f.logger.Debug("body is not valid json, printing raw", logging.Field{Key: "error", Value: err})
		return body
	}
	return out.String()
}

func (f *TextFormatter) htmlToText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		f.logger.Debug("html parse failed, printing raw", logging.Field{Key: "error", Value: err})
		return body
	}
	labelImageLinks(doc)
	doc.Find(strippedElements).Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return tidy(doc.Text())
	}

	var opts []converter.ConvertOptionFunc
	if f.BaseURL != "" {
		opts = append(opts, converter.WithDomain(f.BaseURL))
	}
	text, err := htmltomarkdown.ConvertString(cleaned, opts...)
	if err != nil {
		f.logger.Debug("markdown conversion failed, using document text", logging.Field{Key: "error", Value: err})
		return tidy(doc.Text())
	}
	return tidy(text)
}

// labelImageLinks gives anchors whose only content is media a text label,
// the image alt text or else the href, so they survive media stripping.
func labelImageLinks(doc *goquery.Document) {
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if strings.TrimSpace(a.Text()) != "" || a.Find("img, picture, svg").Length() == 0 {
			return
		}
		label := strings.TrimSpace(a.Find("img[alt]").First().AttrOr("alt", ""))
		if label == "" {
			label = strings.TrimSpace(a.AttrOr("href", ""))
		}
		if label != "" {
			a.SetText(label)
		}
	})
}

// tidy drops trailing spaces (markdown hard breaks) and collapses blank runs.
func tidy(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}
