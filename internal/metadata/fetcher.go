// Package metadata fetches a page and extracts its title and description.
// Fetching is best-effort enrichment: every failure yields an empty result.
package metadata

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pkordes/bookmarks/internal/domain"
)

// DefaultTimeout bounds the whole request, redirects and body read included.
const DefaultTimeout = 5 * time.Second

// maxBodyBytes caps how much of a page is read and parsed.
const maxBodyBytes = 2 << 20

// Fetcher performs timed GET requests and parses the returned HTML.
type Fetcher struct {
	client *resty.Client
	log    *slog.Logger
}

// NewFetcher constructs a Fetcher whose requests time out after timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "bookmarks-metadata/1.0").
		SetDoNotParseResponse(true)
	return &Fetcher{client: client, log: log}
}

// Fetch returns the page title and description of url. Timeouts, transport
// errors and non-2xx statuses return an empty Metadata and are only logged.
func (f *Fetcher) Fetch(ctx context.Context, url string) domain.Metadata {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.log.WarnContext(ctx, "metadata fetch failed", "url", url, "error", err)
		return domain.Metadata{}
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		f.log.WarnContext(ctx, "metadata fetch non-2xx", "url", url, "status", resp.StatusCode())
		return domain.Metadata{}
	}

	doc, err := html.Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		f.log.WarnContext(ctx, "metadata parse failed", "url", url, "error", err)
		return domain.Metadata{}
	}

	md := Extract(doc)
	f.log.DebugContext(ctx, "metadata fetched", "url", url,
		"has_title", md.Title != nil, "has_description", md.Description != nil)
	return md
}

// Extract applies the title and description rules to a parsed document:
// the first <title>, then description from meta name="description",
// meta property="og:description", or the first <p>, in that order.
// Values are trimmed; empty values count as missing.
func Extract(doc *html.Node) domain.Metadata {
	var (
		title, metaDesc, ogDesc, firstP *html.Node
	)

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Title:
			if title == nil {
				title = n
			}
		case atom.Meta:
			if metaDesc == nil && strings.EqualFold(attr(n, "name"), "description") {
				metaDesc = n
			}
			if ogDesc == nil && strings.EqualFold(attr(n, "property"), "og:description") {
				ogDesc = n
			}
		case atom.P:
			if firstP == nil {
				firstP = n
			}
		}
	})

	var md domain.Metadata
	if title != nil {
		md.Title = nonEmpty(textOf(title))
	}

	// A blank meta description falls through to og:description, not straight to <p>.
	switch {
	case metaDesc != nil && nonEmpty(attr(metaDesc, "content")) != nil:
		md.Description = nonEmpty(attr(metaDesc, "content"))
	case ogDesc != nil && nonEmpty(attr(ogDesc, "content")) != nil:
		md.Description = nonEmpty(attr(ogDesc, "content"))
	case firstP != nil:
		md.Description = nonEmpty(textOf(firstP))
	}
	return md
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// textOf concatenates every text node under n.
func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
