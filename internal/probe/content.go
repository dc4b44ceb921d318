package probe

import (
	"bytes"
	"html"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

const (
	// MaxSniffBytes bounds how much of a response body is read for
	// kind sniffing and title extraction
	MaxSniffBytes = 1 << 20

	// MaxTitleLen bounds extracted titles
	MaxTitleLen = 200
)

// titlePolicy strips all markup from extracted titles
var titlePolicy = bluemonday.StrictPolicy()

// Content summarizes what a probed URL serves
type Content struct {
	Kind        types.ProbeKind
	Title       string
	ContentType string
	Charset     string
}

// Extract determines content kind and extracts the page title. The
// contentType argument is the response Content-Type header; sniffing
// covers servers that omit or misreport it.
func Extract(body []byte, contentType string) Content {
	c := Content{Kind: types.ProbeFile}

	mediaType := headerMediaType(contentType)
	if mediaType == "" {
		mediaType = mimetype.Detect(body).String()
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = strings.TrimSpace(mediaType[:i])
		}
	}
	c.ContentType = mediaType

	if !isPage(mediaType) {
		return c
	}

	c.Kind = types.ProbePage
	decoded, cs := decodeHTML(body, contentType)
	c.Charset = cs

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return c
	}
	c.Title = extractTitle(doc)
	return c
}

// extractTitle pulls the page title, falling back to og:title
func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = doc.Find("meta[property='og:title']").AttrOr("content", "")
	}
	return CleanTitle(title)
}

// CleanTitle sanitizes markup out of a title and normalizes whitespace
func CleanTitle(title string) string {
	title = titlePolicy.Sanitize(title)
	title = html.UnescapeString(title)
	title = strings.Join(strings.Fields(title), " ")
	if len(title) > MaxTitleLen {
		title = title[:MaxTitleLen-3] + "..."
	}
	return title
}

// DetectCharset detects the charset of raw HTML bytes
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// decodeHTML converts body bytes to UTF-8. The header charset wins;
// otherwise detection decides.
func decodeHTML(body []byte, contentType string) ([]byte, string) {
	cs := headerCharset(contentType)
	if cs == "" {
		cs = DetectCharset(body)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(body), "text/html; charset="+cs)
	if err != nil {
		return body, cs
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return body, cs
	}
	return decoded, cs
}

// isPage reports whether a media type renders as a page in a view
func isPage(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

func headerMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func headerCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}
