package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nutribot/config"
	"nutribot/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTokenRouter(st *config.Settings) (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	ac := NewAdminController(store, st)
	r := gin.New()
	r.POST("/token", ac.IssueToken)
	return r, store
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestIssueTokenForBootstrapAdmin(t *testing.T) {
	st := &config.Settings{JWTSecret: "topsecret", AdminIDs: []int64{42}}
	r, _ := issueTokenRouter(st)

	w := postJSON(r, "/token", `{"telegram_id":42}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	token, err := jwt.Parse(body.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("topsecret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, true, claims["admin"])
	assert.Equal(t, float64(42), claims["telegramId"])
}

func TestIssueTokenDeniedForRegularUser(t *testing.T) {
	st := &config.Settings{JWTSecret: "topsecret", AdminIDs: []int64{42}}
	r, _ := issueTokenRouter(st)

	w := postJSON(r, "/token", `{"telegram_id":7}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(r, "/token", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
