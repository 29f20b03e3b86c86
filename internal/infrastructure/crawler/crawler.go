// Package crawler fetches and parses site pages for audit runs.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/agencyhub/backend/internal/domain/seo"
)

const (
	defaultTimeout = 20 * time.Second
	userAgent      = "AgencyHubBot/1.0 (+https://agencyhub.io/bot)"
	maxBodyBytes   = 5 << 20
)

// PageCrawler fetches one page at a time over HTTPS and extracts the
// on-page signals the audit rules look at.
type PageCrawler struct {
	client *http.Client
}

// NewPageCrawler creates a crawler with a bounded request timeout
func NewPageCrawler() *PageCrawler {
	return &PageCrawler{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Crawl fetches domain+path and returns what it observed. A non-2xx
// status is not an error; the status code is part of the observation.
func (c *PageCrawler) Crawl(ctx context.Context, domain, path string) (seo.CrawlResult, error) {
	url := fmt.Sprintf("https://%s%s", domain, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return seo.CrawlResult{}, fmt.Errorf("crawler: building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return seo.CrawlResult{}, fmt.Errorf("crawler: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	result := seo.CrawlResult{
		StatusCode: resp.StatusCode,
		LoadMillis: int(time.Since(start).Milliseconds()),
	}
	if resp.StatusCode >= 400 {
		return result, nil
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return result, nil
	}

	doc, err := html.Parse(http.MaxBytesReader(nil, resp.Body, maxBodyBytes))
	if err != nil {
		return result, fmt.Errorf("crawler: parsing %s: %w", url, err)
	}
	extract(doc, &result)
	return result, nil
}

// extract walks the parsed tree collecting title, meta, headings and the
// visible word count
func extract(n *html.Node, result *seo.CrawlResult) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if result.Title == "" {
				result.Title = strings.TrimSpace(textContent(n))
			}
		case "h1":
			if result.H1 == "" {
				result.H1 = strings.TrimSpace(textContent(n))
			}
		case "meta":
			name := strings.ToLower(attr(n, "name"))
			content := attr(n, "content")
			switch name {
			case "description":
				if result.MetaDescription == "" {
					result.MetaDescription = strings.TrimSpace(content)
				}
			case "robots":
				if strings.Contains(strings.ToLower(content), "noindex") {
					result.NoIndex = true
				}
			}
		case "link":
			if strings.EqualFold(attr(n, "rel"), "canonical") && result.Canonical == "" {
				result.Canonical = attr(n, "href")
			}
		case "body":
			result.WordCount = len(strings.Fields(textContent(n)))
		case "script", "style", "noscript":
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		extract(child, result)
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return ""
		}
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
		sb.WriteString(" ")
	}
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
