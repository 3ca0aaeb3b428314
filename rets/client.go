// Package rets is a minimal RETS 1.8 client: login, DMQL2 search, GetObject
// and logout over plain HTTP with Basic auth and ad-hoc session cookies.
// Every logical operation runs its own login -> action -> logout cycle; no
// session is shared or cached across calls.
package rets

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/comps-api/internal/metrics"
)

type Config struct {
	LoginURL  string
	Username  string
	Password  string
	UserAgent string // client identifier sent on every request
}

type Client struct {
	cfg  Config
	http *retryablehttp.Client
	log  *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "CompSearch/1.0"
	}
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = 15 * time.Second
	// Some providers answer login with a 302; treat it as a response, not
	// a redirect to follow.
	rc.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{cfg: cfg, http: rc, log: log}
}

// Session is the ephemeral capability-URL-plus-cookie state for one
// login -> action -> logout cycle. Never reused across operations.
type Session struct {
	SearchURL    string
	GetObjectURL string
	LogoutURL    string
	Cookie       string
}

var reCapability = regexp.MustCompile(`(?im)^\s*(Search|GetObject|Logout)\s*=\s*(\S+)`)

// Login performs the handshake and extracts capability URLs and session
// cookies from the response.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.cfg.LoginURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req.Header, "")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RetsRequests.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		metrics.RetsRequests.WithLabelValues("login", "error").Inc()
		return nil, &TransportError{Step: "login", StatusCode: resp.StatusCode}
	}

	body, err := readAllLimit(resp.Body, 1<<20)
	if err != nil {
		return nil, err
	}
	text := string(body)

	if code, msg, ok := replyCode(text); ok && code != ReplyCodeSuccess {
		metrics.RetsRequests.WithLabelValues("login", "reply_error").Inc()
		return nil, &ReplyError{Step: "login", Code: code, Text: msg}
	}

	sess := &Session{Cookie: joinCookies(resp.Header.Values("Set-Cookie"))}
	base, err := url.Parse(c.cfg.LoginURL)
	if err != nil {
		return nil, err
	}
	for _, m := range reCapability.FindAllStringSubmatch(text, -1) {
		u := resolveCapability(base, strings.TrimSpace(m[2]))
		switch m[1] {
		case "Search":
			sess.SearchURL = u
		case "GetObject":
			sess.GetObjectURL = u
		case "Logout":
			sess.LogoutURL = u
		}
	}
	metrics.RetsRequests.WithLabelValues("login", "ok").Inc()
	return sess, nil
}

// Logout fires a best-effort GET at the session's logout capability. It
// never blocks the caller's result path and swallows every failure; call it
// deferred so it runs on all exit paths after a successful login.
func (c *Client) Logout(sess *Session) {
	if sess == nil || sess.LogoutURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, sess.LogoutURL, nil)
		if err != nil {
			return
		}
		c.setHeaders(req.Header, sess.Cookie)
		resp, err := c.http.Do(req)
		if err != nil {
			metrics.RetsRequests.WithLabelValues("logout", "error").Inc()
			c.log.Debug("rets logout failed", "error", err)
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		metrics.RetsRequests.WithLabelValues("logout", "ok").Inc()
	}()
}

// Search runs a full login -> search -> logout cycle and returns the decoded
// rows. A no-records reply yields an empty slice, not an error.
func (c *Client) Search(ctx context.Context, resource, class, query string, selectFields []string, limit int) ([]Row, error) {
	sess, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Logout(sess)

	if sess.SearchURL == "" {
		return nil, errors.New("rets login succeeded but no Search capability URL found")
	}

	params := url.Values{}
	params.Set("SearchType", resource)
	params.Set("Class", class)
	params.Set("Query", query)
	params.Set("QueryType", "DMQL2")
	params.Set("Format", "COMPACT-DECODED")
	params.Set("Limit", strconv.Itoa(limit))
	params.Set("Count", "1")
	params.Set("StandardNames", "0")
	if len(selectFields) > 0 {
		params.Set("Select", strings.Join(selectFields, ","))
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, sess.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req.Header, sess.Cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RetsRequests.WithLabelValues("search", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RetsRequests.WithLabelValues("search", "error").Inc()
		return nil, &TransportError{Step: "search", StatusCode: resp.StatusCode}
	}

	body, err := readAllLimit(resp.Body, 8<<20)
	if err != nil {
		return nil, err
	}
	text := string(body)

	if code, msg, ok := replyCode(text); ok && code != ReplyCodeSuccess {
		if code == ReplyCodeNoRecords {
			metrics.RetsRequests.WithLabelValues("search", "no_records").Inc()
			return nil, nil
		}
		metrics.RetsRequests.WithLabelValues("search", "reply_error").Inc()
		return nil, &ReplyError{Step: "search", Code: code, Text: msg}
	}

	columns, rows := DecodeCompact(text)
	if columns == nil {
		c.log.Debug("rets search response has no COLUMNS block", "resource", resource, "class", class)
	}
	metrics.RetsRequests.WithLabelValues("search", "ok").Inc()
	return rows, nil
}

func (c *Client) setHeaders(h http.Header, cookie string) {
	creds := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
	h.Set("Authorization", "Basic "+creds)
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("RETS-Version", "RETS/1.8")
	h.Set("Accept", "*/*")
	if cookie != "" {
		h.Set("Cookie", cookie)
	}
}

// joinCookies strips cookie attributes and joins name=value pairs for reuse
// on subsequent requests within the same cycle.
func joinCookies(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, sc := range setCookies {
		if pair, _, _ := strings.Cut(sc, ";"); strings.TrimSpace(pair) != "" {
			pairs = append(pairs, strings.TrimSpace(pair))
		}
	}
	return strings.Join(pairs, "; ")
}

// resolveCapability makes a capability URL absolute against the login URL's
// origin when the provider returns a bare path.
func resolveCapability(base *url.URL, value string) string {
	if value == "" || strings.HasPrefix(value, "http") {
		return value
	}
	return base.Scheme + "://" + base.Host + value
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
