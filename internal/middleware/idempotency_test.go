package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cardledger/cardledger/internal/logging"
)

// setupTestApp mounts a counting balances handler behind the middleware.
func setupTestApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	calls := 0
	app.Post("/balances", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"applied": calls})
	})
	app.Post("/other", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &calls, cleanup
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("[]"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header.Get(idempotentReplayHeader)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	status, _, _ := post(t, app, "/balances", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
	if *calls != 0 {
		t.Fatalf("handler should not run without a key, ran %d times", *calls)
	}
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	status, body, replayed := post(t, app, "/balances", "batch-1")
	if status != fiber.StatusOK || replayed != "" {
		t.Fatalf("first request: status %d replayed %q", status, replayed)
	}

	status2, body2, replayed2 := post(t, app, "/balances", "batch-1")
	if status2 != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status2)
	}
	if body2 != body {
		t.Fatalf("expected cached payload %s got %s", body, body2)
	}
	if replayed2 != "true" {
		t.Fatalf("expected replay header on cached response")
	}
	if *calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", *calls)
	}
}

func TestIdempotencyKeysAreScopedPerRoute(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	if status, _, _ := post(t, app, "/other", "shared"); status != fiber.StatusAccepted {
		t.Fatalf("other route: status %d", status)
	}
	if status, _, replayed := post(t, app, "/balances", "shared"); status != fiber.StatusOK || replayed != "" {
		t.Fatalf("balances route reused a foreign key: status %d replayed %q", status, replayed)
	}
	if *calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", *calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	if status, _, _ := post(t, app, "/balances", "batch-2"); status != fiber.StatusOK {
		t.Fatalf("first request: status %d", status)
	}

	req := httptest.NewRequest(fiber.MethodPost, "/balances", strings.NewReader(`[{"credit_card_number":"4111111111111111"}]`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(idempotencyKeyHeader, "batch-2")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected %d got %d", fiber.StatusUnprocessableEntity, resp.StatusCode)
	}
	if *calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", *calls)
	}
}

func TestIdempotencyReleasesKeyWhenHandlerFails(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	fail := true
	app.Post("/balances", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		if fail {
			return fiber.NewError(fiber.StatusBadRequest, "body must be a JSON array")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	if status, _, _ := post(t, app, "/balances", "retry-me"); status != fiber.StatusBadRequest {
		t.Fatalf("first request: status %d", status)
	}
	fail = false
	if status, _, replayed := post(t, app, "/balances", "retry-me"); status != fiber.StatusOK || replayed != "" {
		t.Fatalf("retry: status %d replayed %q", status, replayed)
	}
}
