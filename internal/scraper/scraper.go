package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/thu-timetable/internal/config"
	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/logger"
)

const (
	BaseURL   = "https://zhjwxk.cic.tsinghua.edu.cn"
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36 Edg/133.0.0.0"
	Timeout   = 30 * time.Second
)

// TypeCode selects which schedule the page lists
type TypeCode string

const (
	TypeLectures TypeCode = "1"
	TypeLabs     TypeCode = "2"
	TypeAll      TypeCode = "3"
)

// pathContent values are the GBK percent-encoded page titles expected by the server
var typeRoutes = map[TypeCode]struct {
	method      string
	pathContent string
}{
	TypeLectures: {"kb", "%D2%BB%BC%B6%D1%A1%BF%CE%BF%CE%B1%ED"},
	TypeLabs:     {"kb", "%B6%FE%BC%B6%D1%A1%BF%CE%BF%CE%B1%ED"},
	TypeAll:      {"ztkb", "%D5%FB%CC%E5%BF%CE%B1%ED"},
}

var termPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d$`)

// ValidateTerm checks the YYYY-YYYY-S academic term format
func ValidateTerm(term string) error {
	if !termPattern.MatchString(term) {
		return fmt.Errorf("invalid term %q (want YYYY-YYYY-S, e.g. 2024-2025-2)", term)
	}
	return nil
}

// Request describes a single schedule page fetch
type Request struct {
	Type    TypeCode
	Term    string
	Cookies *config.Cookies // nil sends no session cookies
}

// Scraper fetches the schedule page and extracts course records from it
type Scraper struct {
	client *http.Client
	url    string
	strict bool
}

// New creates a new Scraper instance
func New() *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url: BaseURL,
	}
}

// WithStrict makes ParsePage fail on the first malformed course entry
// instead of skipping it.
func (s *Scraper) WithStrict(strict bool) *Scraper {
	s.strict = strict
	return s
}

// WithBaseURL points the scraper at another host, such as a mirror or a
// test server. Trailing slashes are dropped.
func (s *Scraper) WithBaseURL(u string) *Scraper {
	if u != "" {
		s.url = strings.TrimRight(u, "/")
	}
	return s
}

// PageURL builds the schedule page URL for a request
func (s *Scraper) PageURL(req Request) (string, error) {
	route, ok := typeRoutes[req.Type]
	if !ok {
		return "", fmt.Errorf("unknown course type code %q (want 1, 2 or 3)", req.Type)
	}
	if err := ValidateTerm(req.Term); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/syxk.vsyxkKcapb.do?m=%sSearch&p_xnxq=%s&pathContent=%s",
		s.url, route.method, req.Term, route.pathContent), nil
}

// FetchPage downloads the schedule page and returns it decoded to UTF-8
func (s *Scraper) FetchPage(ctx context.Context, req Request) ([]byte, error) {
	pageURL, err := s.PageURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	httpReq.Header.Set("Referer", fmt.Sprintf("%s/xkBks.vxkBksXkbBs.do?m=showTree&p_xnxq=%s", s.url, req.Term))
	if req.Cookies != nil {
		httpReq.AddCookie(&http.Cookie{Name: "serverid", Value: req.Cookies.ServerID})
		httpReq.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: req.Cookies.JSessionID})
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &course.NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()
	logger.RecordTiming("fetch.request", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &course.NetworkError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	// The server answers in GBK; the reader sniffs the header and meta tags.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detecting page encoding: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &course.NetworkError{URL: pageURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	logger.Info("Fetched schedule page", logger.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(data),
		"term":     req.Term,
		"type":     string(req.Type),
		"encoding": resp.Header.Get("Content-Type"),
	})
	return data, nil
}
