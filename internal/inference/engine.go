// Package inference drafts listing metadata from a live website: it fetches
// the page once and classifies it with keyword heuristics. Apart from the
// fetch, everything here is deterministic.
package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/config"
)

const DefaultReasonForSelling = "The current owner is moving on to focus on other projects and wants the site in good hands."

// DefaultIncludedAssets is the boilerplate asset list on every draft.
var DefaultIncludedAssets = []string{
	"Domain name",
	"Website source code",
	"All content and media",
	"Social media accounts",
	"Email list (where applicable)",
}

// Draft is the metadata proposed for a new listing. It is not persisted.
type Draft struct {
	URL              string   `json:"url"`
	AskingPrice      float64  `json:"askingPrice"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         Category `json:"category"`
	TechStack        []string `json:"techStack"`
	Monetization     []string `json:"monetization"`
	ReasonForSelling string   `json:"reasonForSelling"`
	IncludedAssets   []string `json:"includedAssets"`
}

type Engine struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	log       zerolog.Logger
}

func NewEngine(cfg config.InferenceConfig, log zerolog.Logger) *Engine {
	return NewEngineWithClient(newFetchClient(cfg.Timeout, cfg.AllowPrivateNetworks), cfg, log)
}

// NewEngineWithClient uses a copy of client; the caller's value is not
// modified.
func NewEngineWithClient(client *http.Client, cfg config.InferenceConfig, log zerolog.Logger) *Engine {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 100000
	}
	c := *client
	if c.Timeout == 0 {
		c.Timeout = cfg.Timeout
	}
	return &Engine{
		client:    &c,
		userAgent: cfg.UserAgent,
		maxBody:   maxBody,
		log:       log,
	}
}

// Infer validates input, fetches rawURL and drafts listing metadata.
// Bad input fails with a validation error before any network access; an
// unreachable site fails with a fetch error.
func (e *Engine) Infer(ctx context.Context, rawURL string, askingPrice float64) (Draft, error) {
	target, err := ValidateInput(rawURL, askingPrice)
	if err != nil {
		return Draft{}, err
	}

	body, err := e.fetch(ctx, target)
	if err != nil {
		e.log.Info().Err(err).Str("url", target.String()).Msg("listing generation fetch failed")
		return Draft{}, apperr.Fetch("could not fetch site", err)
	}

	return Analyze(target.String(), askingPrice, body), nil
}

// ValidateInput checks that rawURL is an absolute http(s) URL and the price
// is positive.
func ValidateInput(rawURL string, askingPrice float64) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, apperr.Validation("url must be an absolute http or https URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperr.Validation("url must be an absolute http or https URL")
	}
	if math.IsNaN(askingPrice) || math.IsInf(askingPrice, 0) || askingPrice <= 0 {
		return nil, apperr.Validation("askingPrice must be a positive number")
	}
	return u, nil
}

func (e *Engine) fetch(ctx context.Context, target *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			return nil, errBlockedAddress
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, errors.New("request timed out")
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("site responded with HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Analyze drafts metadata from an already fetched page.
func Analyze(pageURL string, askingPrice float64, body []byte) Draft {
	meta := Extract(body)
	blob := strings.Join([]string{meta.Title, meta.Description, meta.Keywords, pageURL}, " ")

	category := ClassifyCategory(blob)
	techStack := DetectTechStack(meta.Generator, string(body))
	monetization := InferMonetization(blob, category)

	return Draft{
		URL:              pageURL,
		AskingPrice:      askingPrice,
		Title:            CleanTitle(meta.Title),
		Description:      Describe(meta.Description, category, techStack, monetization, askingPrice),
		Category:         category,
		TechStack:        techStack,
		Monetization:     monetization,
		ReasonForSelling: DefaultReasonForSelling,
		IncludedAssets:   append([]string(nil), DefaultIncludedAssets...),
	}
}
