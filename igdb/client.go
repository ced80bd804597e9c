// Package igdb is the external game-metadata client. It is treated as
// an untrusted, rate-limited remote: requests are throttled locally,
// never retried, and failures surface to the caller as-is.
package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gameshelf/server/config"
	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when the client credentials are missing.
var ErrNotConfigured = errors.New("igdb: credentials not configured")

// CatalogGame is one row of an external catalog search result.
type CatalogGame struct {
	IgdbID      int64    `json:"igdb_id"`
	Title       string   `json:"title"`
	Cover       string   `json:"cover"`
	ReleaseDate string   `json:"release_date"`
	Platforms   []string `json:"platforms"`
	Genres      []string `json:"genres"`
	Rating      *int     `json:"rating"`
	Summary     string   `json:"summary"`
	Developer   string   `json:"developer"`
	Publisher   string   `json:"publisher"`
	Tags        []string `json:"tags"`
}

// Client talks to the IGDB v4 API with a cached OAuth token.
type Client struct {
	cfg     config.IGDBConfig
	http    *http.Client
	limiter *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Client. IGDB allows 4 requests per second; the
// limiter enforces the configured rate locally.
func NewClient(cfg config.IGDBConfig) *Client {
	rps := cfg.RequestsPerS
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// accessToken returns a valid OAuth token, fetching one via the Twitch
// client-credentials flow when the cached token is missing or expiring.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", ErrNotConfigured
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("client_secret", c.cfg.ClientSecret)
	q.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("igdb: token request failed: %s", resp.Status)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", err
	}
	c.token = auth.AccessToken
	// Expire a minute early so an in-flight search never races expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

type igdbGame struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Cover struct {
		URL string `json:"url"`
	} `json:"cover"`
	FirstReleaseDate int64 `json:"first_release_date"`
	Platforms        []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Rating            float64 `json:"rating"`
	Summary           string  `json:"summary"`
	InvolvedCompanies []struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Developer bool `json:"developer"`
		Publisher bool `json:"publisher"`
	} `json:"involved_companies"`
	Themes []struct {
		Name string `json:"name"`
	} `json:"themes"`
}

// Search queries the catalog by free text and maps the results.
func (c *Client) Search(ctx context.Context, query string) ([]CatalogGame, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(`search "%s";
		fields name,cover.url,first_release_date,platforms.name,genres.name,rating,summary,
		involved_companies.company.name,involved_companies.developer,involved_companies.publisher,themes.name;
		limit 10;
		where version_parent = null;`,
		strings.ReplaceAll(query, `"`, `\"`))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("igdb: search failed: %s: %s", resp.Status, msg)
	}

	var raw []igdbGame
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	out := make([]CatalogGame, 0, len(raw))
	for _, g := range raw {
		out = append(out, mapGame(g))
	}
	return out, nil
}

func mapGame(g igdbGame) CatalogGame {
	cg := CatalogGame{
		IgdbID:    g.ID,
		Title:     g.Name,
		Cover:     strings.Replace(g.Cover.URL, "t_thumb", "t_cover_big", 1),
		Summary:   g.Summary,
		Platforms: []string{},
		Genres:    []string{},
		Tags:      []string{},
	}
	if g.FirstReleaseDate > 0 {
		cg.ReleaseDate = time.Unix(g.FirstReleaseDate, 0).UTC().Format("2006-01-02")
	}
	for _, p := range g.Platforms {
		cg.Platforms = append(cg.Platforms, p.Name)
	}
	for _, gn := range g.Genres {
		cg.Genres = append(cg.Genres, gn.Name)
	}
	for _, t := range g.Themes {
		cg.Tags = append(cg.Tags, t.Name)
	}
	if g.Rating > 0 {
		r := int(math.Round(g.Rating))
		cg.Rating = &r
	}
	for _, ic := range g.InvolvedCompanies {
		if ic.Developer && cg.Developer == "" {
			cg.Developer = ic.Company.Name
		}
		if ic.Publisher && cg.Publisher == "" {
			cg.Publisher = ic.Company.Name
		}
	}
	return cg
}
