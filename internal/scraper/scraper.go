package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/elex-datasource/internal/logger"
)

const (
	UserAgent = "elex-datasource/1.0 (github.com/pfrederiksen/elex-datasource)"
	Timeout   = 30 * time.Second
)

// CSVLinkText is the anchor text used by results pages for per-county CSV downloads
const CSVLinkText = "Download Comma Separated Values (CSV)"

// Options configures a Scraper
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	RateLimitRPS float64 // 0 disables throttling
}

// Scraper fetches results index pages and extracts download links
type Scraper struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// New creates a Scraper with default options
func New() *Scraper {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Scraper; zero fields fall back to defaults
func NewWithOptions(opts Options) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	s := &Scraper{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	return s
}

// FindLinks fetches pageURL and returns the hrefs of anchors whose text equals
// linkText. When base is non-empty each href is appended to it verbatim; otherwise
// hrefs are resolved against pageURL.
func (s *Scraper) FindLinks(ctx context.Context, pageURL, linkText, base string) ([]string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		logger.IncrCounter("scraper.fetch")
		logger.RecordTiming("scraper.fetch", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", pageURL, resp.StatusCode)
	}

	links, err := parseLinks(resp.Body, pageURL, linkText, base)
	if err != nil {
		return nil, err
	}

	logger.Debug("Scraped results page", logger.Fields{
		"url":   pageURL,
		"links": len(links),
	})
	return links, nil
}

// parseLinks extracts matching anchors from HTML in document order
func parseLinks(r io.Reader, pageURL, linkText, base string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var page *url.URL
	if base == "" {
		page, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing page url: %w", err)
		}
	}

	links := make([]string, 0)
	var resolveErr error
	doc.Find("a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != linkText {
			return true
		}

		href, ok := sel.Attr("href")
		if !ok {
			logger.Warn("Matching anchor has no href", logger.Fields{"url": pageURL, "index": i})
			return true
		}

		if base != "" {
			links = append(links, base+href)
			return true
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			resolveErr = fmt.Errorf("parsing href %q: %w", href, err)
			return false
		}
		links = append(links, page.ResolveReference(ref).String())
		return true
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	return links, nil
}
