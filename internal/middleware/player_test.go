package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbeisheim/chess-engine/internal/testutil"
	"github.com/gofiber/fiber/v2"
)

func newEchoApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c))
	})
	app.Get("/", handlers...)
	return app
}

func TestEnsurePlayerID(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "header", url: "/", header: "alice", wantStatus: fiber.StatusOK, wantBody: "alice"},
		{name: "query", url: "/?playerId=bob", wantStatus: fiber.StatusOK, wantBody: "bob"},
		{name: "header wins", url: "/?playerId=bob", header: "alice", wantStatus: fiber.StatusOK, wantBody: "alice"},
		{name: "missing", url: "/", wantStatus: fiber.StatusUnauthorized},
	}

	app := newEchoApp(EnsurePlayerID())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("X-Player-ID", tt.header)
			}
			resp, err := app.Test(req)
			testutil.AssertNoError(t, err)
			defer resp.Body.Close()

			testutil.AssertEqual(t, resp.StatusCode, tt.wantStatus)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				testutil.AssertNoError(t, err)
				testutil.AssertEqual(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	app := newEchoApp(EnsurePlayerID(), WebSocketUpgrade())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Player-ID", "alice")
	resp, err := app.Test(req)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, resp.StatusCode, fiber.StatusUpgradeRequired)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Player-ID", "alice")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err = app.Test(req)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, resp.StatusCode, fiber.StatusOK)
}
