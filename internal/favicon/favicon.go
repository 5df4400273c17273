// Package favicon resolves a bookmark's icon as a data URL, falling back to
// generated colour tiles that stay stable per URL.
package favicon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/nikbrunner/homescreen/internal/logging"
)

var log = logging.GetLogger("favicon")

var (
	ErrNotImage = errors.New("Favicon not found or not an image")
	ErrNoIcon   = errors.New("no icon link in page")
	ErrDataURL  = errors.New("malformed data URL")
)

const userAgent = "homescreen/1.0 (+favicon fetch)"

var inf = math.Inf(1)

// Cache persists resolved icons and fallback colours.
type Cache interface {
	Favicon(url string) (string, bool, error)
	SetFavicon(url, icon string) error
	TabColor(url string) (string, bool, error)
	SetTabColor(url, color string) error
	FallbackColors(url string) ([]string, bool, error)
	SetFallbackColors(url string, colors []string) error
}

// Icon is a resolved favicon.
type Icon struct {
	DataURL string
	// Fallback is set when the icon was generated rather than fetched.
	Fallback bool
}

// Decode splits the data URL into its content type and bytes.
func (i Icon) Decode() (string, []byte, error) {
	return DecodeDataURL(i.DataURL)
}

// NewResolverParams configures a Resolver.
type NewResolverParams struct {
	Cache        Cache
	Client       *http.Client
	Timeout      time.Duration
	RatePerSec   float64
	MaxBodyBytes int64
	// Complex picks the four-colour fallback when it returns true.
	Complex func() bool
}

// Resolver looks up favicons through an in-memory layer, the persistent
// Cache, and finally the network. It is safe for concurrent use.
type Resolver struct {
	cache   Cache
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
	complex func() bool

	mu     sync.RWMutex
	memory map[string]string
	// failed remembers URLs that fell back during this session.
	failed map[string]error
}

// NewResolver creates a Resolver.
func NewResolver(params NewResolverParams) *Resolver {
	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	limit := rate.Inf
	if params.RatePerSec > 0 {
		limit = rate.Limit(params.RatePerSec)
	}
	maxBody := params.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}
	complexFn := params.Complex
	if complexFn == nil {
		complexFn = func() bool { return true }
	}

	return &Resolver{
		cache:   params.Cache,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		maxBody: maxBody,
		complex: complexFn,
		memory:  map[string]string{},
		failed:  map[string]error{},
	}
}

// Resolve returns the icon for pageURL. It always returns a usable icon;
// a non-nil error explains why a fallback was generated.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (Icon, error) {
	r.mu.RLock()
	icon, ok := r.memory[pageURL]
	failure, failed := r.failed[pageURL]
	r.mu.RUnlock()
	if ok {
		return Icon{DataURL: icon}, nil
	}
	if failed {
		return r.Fallback(pageURL), failure
	}

	if r.cache != nil {
		icon, ok, err := r.cache.Favicon(pageURL)
		if err != nil {
			log.Warn("Favicon cache read failed", "url", pageURL, "error", err)
		}
		if ok && icon != "" {
			r.remember(pageURL, icon)
			return Icon{DataURL: icon}, nil
		}
	}

	icon, err := r.fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() == nil {
			r.mu.Lock()
			r.failed[pageURL] = err
			r.mu.Unlock()
		}
		log.Debug("Using fallback icon", "url", pageURL, "reason", normalizeError(err.Error()))
		return r.Fallback(pageURL), err
	}

	r.remember(pageURL, icon)
	if r.cache != nil {
		if err := r.cache.SetFavicon(pageURL, icon); err != nil {
			log.Warn("Favicon cache write failed", "url", pageURL, "error", err)
		}
	}
	return Icon{DataURL: icon}, nil
}

// Forget drops pageURL from the in-memory layers so the next Resolve
// retries the network.
func (r *Resolver) Forget(pageURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memory, pageURL)
	delete(r.failed, pageURL)
}

func (r *Resolver) remember(pageURL, icon string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memory[pageURL] = icon
	delete(r.failed, pageURL)
}

// fetch scans the page for an icon link, falling back to /favicon.ico at
// the page origin, and downloads it.
func (r *Resolver) fetch(ctx context.Context, pageURL string) (string, error) {
	secure := EnsureHTTPS(pageURL)
	base, err := url.Parse(secure)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", pageURL, err)
	}
	if base.Host == "" {
		return "", fmt.Errorf("parse %q: missing host", pageURL)
	}

	iconURL, err := r.findIconLink(ctx, base)
	if err != nil {
		log.Debug("No icon link", "url", pageURL, "error", err)
		iconURL = (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}).String()
	}

	return r.download(ctx, iconURL)
}

func (r *Resolver) get(ctx context.Context, target string) (*http.Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return r.client.Do(req)
}

func (r *Resolver) findIconLink(ctx context.Context, page *url.URL) (string, error) {
	resp, err := r.get(ctx, page.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch page: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, r.maxBody))
	if err != nil {
		return "", err
	}

	// Relative links resolve against where the page ended up.
	if resp.Request != nil && resp.Request.URL != nil {
		page = resp.Request.URL
	}

	href, ok := PickIcon(doc)
	if !ok {
		return "", ErrNoIcon
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return page.ResolveReference(ref).String(), nil
}

// PickIcon chooses the icon reference from a parsed page: among
// link[rel*=icon], .ico first then the smallest declared size; without
// icon links, the img with the smallest width.
func PickIcon(doc *goquery.Document) (string, bool) {
	type candidate struct {
		href string
		ico  bool
		size float64
	}

	var links []candidate
	doc.Find("link[rel*='icon']").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		links = append(links, candidate{
			href: href,
			ico:  extension(href) == "ico",
			size: leadingNumber(strings.Split(s.AttrOr("sizes", ""), "x")[0]),
		})
	})
	if len(links) > 0 {
		sort.SliceStable(links, func(i, j int) bool {
			if links[i].ico != links[j].ico {
				return links[i].ico
			}
			return links[i].size < links[j].size
		})
		return links[0].href, true
	}

	var imgs []candidate
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}
		imgs = append(imgs, candidate{href: src, size: leadingNumber(s.AttrOr("width", ""))})
	})
	if len(imgs) > 0 {
		sort.SliceStable(imgs, func(i, j int) bool {
			return imgs[i].size < imgs[j].size
		})
		return imgs[0].href, true
	}

	return "", false
}

func (r *Resolver) download(ctx context.Context, iconURL string) (string, error) {
	resp, err := r.get(ctx, iconURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	ctype := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.Contains(ctype, "image") {
		return "", fmt.Errorf("%w: %s (%s)", ErrNotImage, resp.Status, ctype)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBody))
	if err != nil {
		return "", err
	}
	if media, _, err := mime.ParseMediaType(ctype); err == nil {
		ctype = media
	}
	return EncodeDataURL(ctype, data), nil
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// EnsureHTTPS rewrites http:// and protocol-relative URLs to https://, and
// prefixes https:// when there is no scheme.
func EnsureHTTPS(u string) string {
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	switch {
	case strings.HasPrefix(lower, "http://"):
		return "https://" + u[len("http://"):]
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case schemeRe.MatchString(u):
		return u
	}
	return "https://" + u
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a base64 data URL.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrDataURL
	}
	ctype, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return ctype, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDataURL, err)
	}
	return ctype, data, nil
}

// extension is the text after the last dot, lowercased.
func extension(href string) string {
	i := strings.LastIndex(href, ".")
	if i < 0 {
		return strings.ToLower(href)
	}
	return strings.ToLower(href[i+1:])
}

// leadingNumber parses leading digits; anything else sorts last.
func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return inf
	}
	return float64(n)
}
