package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gameshelf/server/api/rest"
	"github.com/gameshelf/server/config"
	"github.com/gameshelf/server/friendship"
	"github.com/gameshelf/server/igdb"
	mw "github.com/gameshelf/server/middleware"
	"github.com/gameshelf/server/storage"
	"github.com/gameshelf/server/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	r     *gin.Engine
	store *storage.Facade
}

// newEnv wires the full route table the way main does, against a
// SQLite primary with an in-memory fallback.
func newEnv(t *testing.T) *env {
	t.Helper()

	store := testutil.SetupTestFacade(t)
	c := testutil.SetupTestCache(t)
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	friendSvc := friendship.NewService(store, zap.NewNop())
	catalog := igdb.NewClient(config.IGDBConfig{})

	authH := rest.NewAuthHandler(store, c, sec)
	gameH := rest.NewGameHandler(store, catalog)
	friendH := rest.NewFriendHandler(store, friendSvc)
	userH := rest.NewUserHandler(store)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", mw.Auth(sec, c), authH.Logout)

		userG := api.Group("/user", mw.Auth(sec, c))
		userG.GET("", authH.Me)
		userG.PATCH("/profile", authH.UpdateProfile)
		userG.PATCH("/password", authH.ChangePassword)

		usersG := api.Group("/users", mw.Auth(sec, c))
		usersG.GET("/search", userH.Search)

		gamesG := api.Group("/games", mw.Auth(sec, c))
		gamesG.GET("", gameH.List)
		gamesG.GET("/search", gameH.Search)
		gamesG.GET("/:id", gameH.Get)
		gamesG.POST("", gameH.Create)
		gamesG.PATCH("/:id", gameH.Update)
		gamesG.DELETE("/:id", gameH.Delete)

		api.GET("/catalog/search", mw.Auth(sec, c), gameH.CatalogSearch)

		friendsG := api.Group("/friends", mw.Auth(sec, c))
		friendsG.GET("", friendH.List)
		friendsG.GET("/pending", friendH.Pending)
		friendsG.POST("", friendH.Request)
		friendsG.PATCH("/:id/accept", friendH.Accept)
		friendsG.PATCH("/:id/reject", friendH.Reject)
		friendsG.DELETE("/:id/cancel", friendH.Cancel)
		friendsG.DELETE("/:id", friendH.Remove)
		friendsG.GET("/:id/games", friendH.Games)
	}

	return &env{r: r, store: store}
}

// do performs a JSON request; token may be empty for anonymous calls.
func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its token and id.
func (e *env) register(t *testing.T, username string) (string, int64) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
