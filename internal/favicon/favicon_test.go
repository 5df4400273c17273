package favicon_test

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/homescreen/internal/favicon"
	"github.com/nikbrunner/homescreen/internal/storage"
)

var icoBytes = []byte{0x00, 0x00, 0x01, 0x00}

func newSite(t *testing.T, page string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/x-icon")
		w.Write(icoBytes)
	})
	mux.HandleFunc("/static/icon.png", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write([]byte("png"))
	})
	mux.HandleFunc("/text.ico", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("nope"))
	})

	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newResolver(srv *httptest.Server, cache favicon.Cache, complex bool) *favicon.Resolver {
	return favicon.NewResolver(favicon.NewResolverParams{
		Cache:   cache,
		Client:  srv.Client(),
		Complex: func() bool { return complex },
	})
}

func TestResolve_PrefersIcoLink(t *testing.T) {
	srv, _ := newSite(t, `<html><head>
		<link rel="icon" sizes="16x16" href="/static/icon.png">
		<link rel="shortcut icon" href="/favicon.ico">
	</head></html>`)
	cache := storage.NewAccessor(storage.NewMemoryKV())

	icon, err := newResolver(srv, cache, true).Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, icon.Fallback)

	ctype, data, err := icon.Decode()
	require.NoError(t, err)
	assert.Equal(t, "image/x-icon", ctype)
	assert.Equal(t, icoBytes, data)

	cached, ok, err := cache.Favicon(srv.URL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, icon.DataURL, cached)
}

func TestResolve_DefaultFaviconPath(t *testing.T) {
	srv, _ := newSite(t, `<html><body>no icons here</body></html>`)

	icon, err := newResolver(srv, nil, true).Resolve(context.Background(), srv.URL+"/some/page")
	require.NoError(t, err)

	_, data, err := icon.Decode()
	require.NoError(t, err)
	assert.Equal(t, icoBytes, data)
}

func TestResolve_StripsContentTypeParams(t *testing.T) {
	srv, _ := newSite(t, `<link rel="icon" href="static/icon.png">`)

	icon, err := newResolver(srv, nil, true).Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(icon.DataURL, "data:image/png;base64,"))
}

func TestResolve_CacheHitSkipsNetwork(t *testing.T) {
	srv, hits := newSite(t, `<link rel="icon" href="/favicon.ico">`)
	cache := storage.NewAccessor(storage.NewMemoryKV())
	require.NoError(t, cache.SetFavicon(srv.URL, "data:image/png;base64,AA=="))

	icon, err := newResolver(srv, cache, true).Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AA==", icon.DataURL)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestResolve_FallbackIsStable(t *testing.T) {
	srv, hits := newSite(t, `<link rel="icon" href="/text.ico">`)
	cache := storage.NewAccessor(storage.NewMemoryKV())

	first, err := newResolver(srv, cache, true).Resolve(context.Background(), srv.URL)
	require.ErrorIs(t, err, favicon.ErrNotImage)
	assert.True(t, first.Fallback)

	colors, ok, err := cache.FallbackColors(srv.URL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, colors, 4)

	// A fresh resolver over the same store draws the same tile.
	second, _ := newResolver(srv, cache, true).Resolve(context.Background(), srv.URL)
	assert.Equal(t, first.DataURL, second.DataURL)

	// The failed fetch is not cached as a favicon.
	_, ok, _ = cache.Favicon(srv.URL)
	assert.False(t, ok)

	// Within one resolver the failure is remembered.
	r := newResolver(srv, cache, true)
	r.Resolve(context.Background(), srv.URL)
	before := atomic.LoadInt32(hits)
	r.Resolve(context.Background(), srv.URL)
	assert.Equal(t, before, atomic.LoadInt32(hits))
}

func TestFallback_SimpleMode(t *testing.T) {
	cache := storage.NewAccessor(storage.NewMemoryKV())
	r := favicon.NewResolver(favicon.NewResolverParams{
		Cache:   cache,
		Complex: func() bool { return false },
	})

	icon := r.Fallback("http://x.test")
	assert.True(t, icon.Fallback)

	color, ok, err := cache.TabColor("http://x.test")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, color)

	_, data, err := icon.Decode()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	assert.Equal(t, icon.DataURL, r.Fallback("http://x.test").DataURL)
}

func TestComplexTile_Quadrants(t *testing.T) {
	tile := favicon.ComplexTile([]string{"#FF0000", "#00FF00", "#0000FF", "#FFFFFF"})

	_, data, err := favicon.DecodeDataURL(tile)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 80, img.Bounds().Dx())

	tests := []struct {
		x, y    int
		r, g, b uint32
	}{
		{10, 10, 0xffff, 0, 0},
		{70, 10, 0, 0xffff, 0},
		{10, 70, 0, 0, 0xffff},
		{70, 70, 0xffff, 0xffff, 0xffff},
	}
	for _, tt := range tests {
		r, g, b, _ := img.At(tt.x, tt.y).RGBA()
		assert.Equal(t, []uint32{tt.r, tt.g, tt.b}, []uint32{r, g, b}, "pixel %d,%d", tt.x, tt.y)
	}
}

func TestPickIcon(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			name: "ico first",
			html: `<link rel="apple-touch-icon" sizes="180x180" href="/a.png"><link rel="icon" href="/b.ico">`,
			want: "/b.ico",
			ok:   true,
		},
		{
			name: "smallest size",
			html: `<link rel="icon" sizes="64x64" href="/64.png"><link rel="icon" sizes="32x32" href="/32.png"><link rel="icon" href="/any.png">`,
			want: "/32.png",
			ok:   true,
		},
		{
			name: "skips empty href",
			html: `<link rel="icon" href=""><link rel="icon" href="/real.png">`,
			want: "/real.png",
			ok:   true,
		},
		{
			name: "smallest image",
			html: `<img src="/big.png" width="300"><img src="/nowidth.png"><img src="/small.png" width="20">`,
			want: "/small.png",
			ok:   true,
		},
		{
			name: "nothing",
			html: `<p>hello</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)
			got, ok := favicon.PickIcon(doc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"#DB772A": {R: 0xdb, G: 0x77, B: 0x2a, A: 0xff},
		"#fff":    {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		" 102030": {R: 0x10, G: 0x20, B: 0x30, A: 0xff},
	}
	for hex, want := range tests {
		got, err := favicon.ParseColor(hex)
		require.NoError(t, err, hex)
		assert.Equal(t, want, got, hex)
	}

	for _, bad := range []string{"", "#12345", "#xyzxyz", "red"} {
		_, err := favicon.ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnsureHTTPS(t *testing.T) {
	tests := map[string]string{
		"http://a.test":  "https://a.test",
		"HTTP://a.test":  "https://a.test",
		"//a.test/x":     "https://a.test/x",
		"a.test":         "https://a.test",
		"https://a.test": "https://a.test",
		"ftp://a.test/f": "ftp://a.test/f",
	}
	for in, want := range tests {
		assert.Equal(t, want, favicon.EnsureHTTPS(in), in)
	}
}

func TestPrefetch(t *testing.T) {
	srv, _ := newSite(t, `<link rel="icon" href="/favicon.ico">`)
	r := newResolver(srv, storage.NewAccessor(storage.NewMemoryKV()), false)

	urls := []string{srv.URL, srv.URL + "/a", srv.URL + "/b"}
	var progress []int
	results := r.Prefetch(context.Background(), urls, 2, func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, urls[i], res.URL)
		assert.NotEmpty(t, res.Icon.DataURL)
	}
	assert.Equal(t, []int{1, 2, 3}, progress)
}
