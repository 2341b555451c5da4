package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sifs_backend/internals/configs"
	"sifs_backend/internals/constants"
	"sifs_backend/internals/middlewares/auth"
	"sifs_backend/internals/middlewares/logger"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func adminApp() *fiber.App {
	app := newApp()
	app.Get("/admin",
		auth.AuthJWT(auth.AuthJWTOpts{Secret: testSecret, AllowCookieFallback: true}),
		auth.OnlyRoles(constants.RoleErrorAdmin("verification logs"), constants.RoleAdmin),
		func(c *fiber.Ctx) error { return c.SendString(c.Locals(auth.LocUserID).(string)) },
	)
	return app
}

func TestAuthJWT(t *testing.T) {
	app := adminApp()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", "", fiber.StatusUnauthorized},
		{"admin via role", "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "role": "admin", "exp": exp}), "", fiber.StatusOK},
		{"admin via roles", "Bearer " + sign(t, jwt.MapClaims{"id": "u1", "roles": []string{"user", "Admin"}, "exp": exp}), "", fiber.StatusOK},
		{"cookie fallback", "", sign(t, jwt.MapClaims{"id": "u1", "role": "admin", "exp": exp}), fiber.StatusOK},
		{"not admin", "Bearer " + sign(t, jwt.MapClaims{"id": "u1", "role": "user", "exp": exp}), "", fiber.StatusForbidden},
		{"expired", "Bearer " + sign(t, jwt.MapClaims{"id": "u1", "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}), "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set("Cookie", "access_token="+tc.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestOnlyRolesMessages(t *testing.T) {
	app := newApp()
	app.Get("/no-claims", auth.OnlyRoles("", constants.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/user", func(c *fiber.Ctx) error {
		c.Locals(auth.LocRoles, []string{"user"})
		return c.Next()
	}, auth.OnlyRoles(constants.RoleErrorAdmin("verification logs"), constants.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/generic", func(c *fiber.Ctx) error {
		c.Locals(auth.LocRoles, []string{"user"})
		return c.Next()
	}, auth.OnlyRoles("", constants.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/no-claims", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Only admins may access verification logs.")

	resp, err = app.Test(httptest.NewRequest("GET", "/generic", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "you are not authorized")
}

func TestAuthJWTRejectsOtherAlgorithms(t *testing.T) {
	app := adminApp()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthJWTPanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { auth.AuthJWT(auth.AuthJWTOpts{}) })
}

func TestRequestIDEchoesAndMints(t *testing.T) {
	app := newApp()
	app.Use(logger.RequestID(time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		assert.True(t, ok)
		return c.SendString(logger.RequestIDOf(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRecoveryReturns500(t *testing.T) {
	app := newApp()
	app.Use(RecoveryMiddleware(zap.NewNop()))
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRateLimiterAnswers429(t *testing.T) {
	app := newApp()
	app.Use(ExportRateLimiter())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	var last int
	for i := 0; i < 6; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestCorsWildcardDropsCredentials(t *testing.T) {
	app := newApp()
	app.Use(CorsMiddleware([]string{"*"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestSetupMiddlewares(t *testing.T) {
	app := newApp()
	SetupMiddlewares(app, &configs.Config{
		ExportTimeout:    time.Second,
		CORSAllowOrigins: []string{"http://localhost:5173/"},
	}, zap.NewNop())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
