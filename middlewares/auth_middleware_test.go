package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutribot/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookAuth(t *testing.T) {
	r := protectedRouter(WebhookAuth("s3cret"))

	assert.Equal(t, http.StatusUnauthorized, hit(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, hit(r, "X-Webhook-Secret", "wrong").Code)
	assert.Equal(t, http.StatusOK, hit(r, "X-Webhook-Secret", "s3cret").Code)
}

func TestWebhookAuthMisconfigured(t *testing.T) {
	r := protectedRouter(WebhookAuth(""))
	assert.Equal(t, http.StatusInternalServerError, hit(r, "X-Webhook-Secret", "anything").Code)
}

func TestAdminAuthAcceptsIssuedToken(t *testing.T) {
	token, err := utils.GenerateAdminJWT(99, "topsecret")
	require.NoError(t, err)

	var gotID int64
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AdminAuth("topsecret"), func(c *gin.Context) {
		gotID = c.GetInt64("telegramID")
		c.Status(http.StatusOK)
	})

	w := hit(r, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(99), gotID)
}

func TestAdminAuthRejects(t *testing.T) {
	r := protectedRouter(AdminAuth("topsecret"))

	assert.Equal(t, http.StatusUnauthorized, hit(r, "", "").Code)

	foreign, err := utils.GenerateAdminJWT(99, "some-other-secret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, hit(r, "Authorization", "Bearer "+foreign).Code)

	// Right secret but no admin claim.
	plain := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"telegramId": int64(99),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	signed, err := plain.SignedString([]byte("topsecret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, hit(r, "Authorization", "Bearer "+signed).Code)
}
