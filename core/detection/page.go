package detection

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Page is what the fingerprint tier extracts from one GET.
type Page struct {
	URL             string
	StatusCode      int
	Title           string
	Generator       string
	ApplicationName string
	Body            string
	Headers         http.Header
}

// Names returns the non-empty identifying strings of the page, most
// specific first.
func (p *Page) Names() []string {
	if p == nil {
		return nil
	}
	var names []string
	for _, v := range []string{p.ApplicationName, p.Title, p.Generator} {
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	return names
}

// PageFetcher retrieves and parses a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher issues rate limited GETs with certificate validation off.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
}

// NewHTTPFetcher builds a fetcher from the detection configuration.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // internal self-signed deployments

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 512 << 10
	}

	return &HTTPFetcher{
		client:  &http.Client{Transport: transport, Timeout: cfg.FetchTimeout()},
		limiter: rate.NewLimiter(limit, burst),
		maxBody: maxBody,
	}
}

// Fetch performs the GET. Any status code is accepted; login and error
// pages still carry titles and headers worth matching.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "proxydash/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	page := ParsePage(body)
	page.URL = url
	page.StatusCode = resp.StatusCode
	page.Headers = resp.Header
	return page, nil
}

// ParsePage extracts the title and the generator and application-name meta
// values from an HTML document.
func ParsePage(body []byte) *Page {
	page := &Page{Body: string(body)}
	z := html.NewTokenizer(bytes.NewReader(body))

	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			page.Title = strings.TrimSpace(page.Title)
			return page
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "title":
				inTitle = page.Title == ""
			case "meta":
				if hasAttr {
					readMeta(z, page)
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				page.Title += string(z.Text())
			}
		}
	}
}

func readMeta(z *html.Tokenizer, page *Page) {
	var name, content string
	for {
		key, val, more := z.TagAttr()
		switch strings.ToLower(string(key)) {
		case "name":
			name = strings.ToLower(string(val))
		case "content":
			content = strings.TrimSpace(string(val))
		}
		if !more {
			break
		}
	}

	switch name {
	case "generator":
		if page.Generator == "" {
			page.Generator = content
		}
	case "application-name":
		if page.ApplicationName == "" {
			page.ApplicationName = content
		}
	}
}
