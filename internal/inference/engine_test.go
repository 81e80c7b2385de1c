package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipyard/internal/apperr"
	"flipyard/internal/config"
)

const shopPage = `<html><head>
<title>Acme Shop | Acme Inc</title>
<meta name="description" content="Handmade candles and soaps">
<link rel="stylesheet" href="https://cdn.shopify.com/s/files/theme.css">
</head><body>welcome</body></html>`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(config.InferenceConfig{
		Timeout:              2 * time.Second,
		MaxBodyBytes:         100000,
		UserAgent:            "FlipyardBot/test",
		AllowPrivateNetworks: true,
	}, zerolog.Nop())
}

func TestEngineInfer(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(shopPage))
	}))
	defer srv.Close()

	draft, err := testEngine(t).Infer(context.Background(), srv.URL+"/shop", 5000)
	require.NoError(t, err)

	assert.Equal(t, "FlipyardBot/test", userAgent)
	assert.Equal(t, srv.URL+"/shop", draft.URL)
	assert.Equal(t, 5000.0, draft.AskingPrice)
	assert.Equal(t, "Acme Shop for Sale", draft.Title)
	assert.Equal(t, CategoryEcommerce, draft.Category)
	assert.Equal(t, []string{"Shopify"}, draft.TechStack)
	assert.Equal(t, []string{"Product Sales"}, draft.Monetization)
	assert.True(t, strings.HasPrefix(draft.Description, "Handmade candles and soaps. This established e-commerce store"))
	assert.Contains(t, draft.Description, "$5,000")
	assert.Equal(t, DefaultReasonForSelling, draft.ReasonForSelling)
	assert.Equal(t, DefaultIncludedAssets, draft.IncludedAssets)
}

func TestEngineInfer_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testEngine(t).Infer(context.Background(), srv.URL, 100)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestEngineInfer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := testEngine(t).Infer(context.Background(), addr, 100)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
}

func TestEngineInfer_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	engine := NewEngine(config.InferenceConfig{Timeout: 50 * time.Millisecond, UserAgent: "x", AllowPrivateNetworks: true}, zerolog.Nop())
	_, err := engine.Infer(context.Background(), srv.URL, 100)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestEngineInfer_InvalidInputMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	engine := testEngine(t)
	cases := []struct {
		url   string
		price float64
	}{
		{"not a url", 100},
		{"ftp://example.com", 100},
		{"/relative/path", 100},
		{srv.URL, 0},
		{srv.URL, -5},
	}
	for _, tc := range cases {
		_, err := engine.Infer(context.Background(), tc.url, tc.price)
		require.Error(t, err, tc.url)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), tc.url)
	}
	assert.Zero(t, hits.Load())
}

func TestEngineInfer_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the generator tag sits past the cap and must not be seen
		_, _ = w.Write([]byte("<html><head><title>Recipes</title>"))
		_, _ = w.Write([]byte(strings.Repeat(" ", 2000)))
		_, _ = w.Write([]byte(`<meta name="generator" content="WordPress 6"></head></html>`))
	}))
	defer srv.Close()

	engine := NewEngine(config.InferenceConfig{Timeout: time.Second, MaxBodyBytes: 1000, AllowPrivateNetworks: true}, zerolog.Nop())
	draft, err := engine.Infer(context.Background(), srv.URL, 100)
	require.NoError(t, err)
	assert.Equal(t, DefaultTechStack, draft.TechStack)
	assert.Equal(t, "Recipes for Sale", draft.Title)
}

func TestAnalyze_DefaultsForBarePage(t *testing.T) {
	draft := Analyze("https://example.com", 250, []byte("<html><body>hi</body></html>"))

	assert.Equal(t, "Established Website for Sale", draft.Title)
	assert.Equal(t, CategoryContentSite, draft.Category)
	assert.Equal(t, DefaultTechStack, draft.TechStack)
	assert.Equal(t, []string{"Display Ads", "Affiliate Marketing"}, draft.Monetization)
	assert.True(t, strings.HasPrefix(draft.Description, "An established content site built with HTML/CSS and JavaScript"))
}

func TestEngineInfer_RefusesPrivateAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	engine := NewEngine(config.InferenceConfig{Timeout: time.Second}, zerolog.Nop())
	_, err := engine.Infer(context.Background(), srv.URL, 100)

	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
	assert.Equal(t, "could not fetch site: site address is not publicly routable", apperr.PublicMessage(err))
	assert.Zero(t, hits.Load())
}

func TestPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::1", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicAddr(netip.MustParseAddr(tt.addr)), tt.addr)
	}
}

func TestNewEngineWithClient_DoesNotMutateCaller(t *testing.T) {
	client := &http.Client{}
	engine := NewEngineWithClient(client, config.InferenceConfig{Timeout: 3 * time.Second}, zerolog.Nop())

	assert.Zero(t, client.Timeout)
	assert.Equal(t, 3*time.Second, engine.client.Timeout)
}
