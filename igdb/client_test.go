package igdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gameshelf/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServers(t *testing.T, tokenCalls *atomic.Int64, searchBody string) (tokenURL, apiURL string) {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "cid", r.Header.Get("Client-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	t.Cleanup(apiSrv.Close)
	return tokenSrv.URL, apiSrv.URL
}

func TestSearchNotConfigured(t *testing.T) {
	c := NewClient(config.IGDBConfig{})
	_, err := c.Search(context.Background(), "hades")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchMapsResults(t *testing.T) {
	var tokenCalls atomic.Int64
	body := `[{
		"id": 1115,
		"name": "Hades",
		"cover": {"url": "//images.igdb.com/t_thumb/co1234.jpg"},
		"first_release_date": 1600300800,
		"platforms": [{"name": "PC"}, {"name": "Switch"}],
		"genres": [{"name": "Roguelike"}],
		"rating": 92.6,
		"summary": "Defy the god of the dead.",
		"involved_companies": [
			{"company": {"name": "Supergiant Games"}, "developer": true, "publisher": true}
		],
		"themes": [{"name": "Fantasy"}]
	}]`
	tokenURL, apiURL := newTestServers(t, &tokenCalls, body)

	c := NewClient(config.IGDBConfig{
		ClientID:     "cid",
		ClientSecret: "sec",
		TokenURL:     tokenURL,
		APIURL:       apiURL,
		RequestsPerS: 100,
	})

	results, err := c.Search(context.Background(), "hades")
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.Equal(t, int64(1115), g.IgdbID)
	assert.Equal(t, "Hades", g.Title)
	assert.Contains(t, g.Cover, "t_cover_big")
	assert.NotContains(t, g.Cover, "t_thumb")
	assert.Equal(t, "2020-09-17", g.ReleaseDate)
	assert.Equal(t, []string{"PC", "Switch"}, g.Platforms)
	assert.Equal(t, []string{"Roguelike"}, g.Genres)
	require.NotNil(t, g.Rating)
	assert.Equal(t, 93, *g.Rating)
	assert.Equal(t, "Supergiant Games", g.Developer)
	assert.Equal(t, "Supergiant Games", g.Publisher)
	assert.Equal(t, []string{"Fantasy"}, g.Tags)
}

func TestSearchReusesCachedToken(t *testing.T) {
	var tokenCalls atomic.Int64
	tokenURL, apiURL := newTestServers(t, &tokenCalls, `[]`)

	c := NewClient(config.IGDBConfig{
		ClientID:     "cid",
		ClientSecret: "sec",
		TokenURL:     tokenURL,
		APIURL:       apiURL,
		RequestsPerS: 100,
	})

	ctx := context.Background()
	_, err := c.Search(ctx, "a")
	require.NoError(t, err)
	_, err = c.Search(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestSearchEscapesQuotes(t *testing.T) {
	var gotBody string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	c := NewClient(config.IGDBConfig{
		ClientID:     "cid",
		ClientSecret: "sec",
		TokenURL:     tokenSrv.URL,
		APIURL:       apiSrv.URL,
		RequestsPerS: 100,
	})

	_, err := c.Search(context.Background(), `say "hi"`)
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotBody, `search "say \"hi\"";`), "quotes must be escaped: %s", gotBody)
}

func TestSearchUpstreamErrorSurfaces(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer tokenSrv.Close()
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer apiSrv.Close()

	c := NewClient(config.IGDBConfig{
		ClientID:     "cid",
		ClientSecret: "sec",
		TokenURL:     tokenSrv.URL,
		APIURL:       apiSrv.URL,
		RequestsPerS: 100,
	})

	_, err := c.Search(context.Background(), "hades")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}
