// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store; the Valkey-backed cache tests
// are skipped when Valkey is unavailable.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"wecamp/internal/category"
	"wecamp/internal/events"
	"wecamp/internal/models"
	"wecamp/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "tree:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// seedCategories is the shared fixture:
//
//	r1 Kamp Malzemeleri
//	  c1 Kamp Mutfağı
//	    l1 Kamp Ocakları
//	    l2 Termoslar
//	  c3 Uyku
//	    l4 Uyku Tulumları
//	r2 Aydınlatma
//	  c2 Aydınlatma
//	    l3 Fenerler
var seedCategories = []models.Category{
	{ID: "r1", Name: "Kamp Malzemeleri", Slug: "kamp-malzemeleri", Icon: "⛺", Order: 0},
	{ID: "c1", Name: "Kamp Mutfağı", Slug: "kamp-mutfagi", ParentID: models.StringPtr("r1"), Order: 0},
	{ID: "l1", Name: "Kamp Ocakları", Slug: "kamp-ocaklari", ParentID: models.StringPtr("c1"), Order: 0,
		Description: "Taşınabilir **gazlı** ocaklar.\n\n<script>alert(1)</script>"},
	{ID: "l2", Name: "Termoslar", Slug: "termoslar", ParentID: models.StringPtr("c1"), Order: 1},
	{ID: "c3", Name: "Uyku", Slug: "uyku", ParentID: models.StringPtr("r1"), Order: 1},
	{ID: "l4", Name: "Uyku Tulumları", Slug: "uyku-tulumlari", ParentID: models.StringPtr("c3"), Order: 0},
	{ID: "r2", Name: "Aydınlatma", Slug: "aydinlatma", Icon: "🔦", Order: 1},
	{ID: "c2", Name: "Aydınlatma", Slug: "aydinlatma-kolon", ParentID: models.StringPtr("r2"), Order: 0},
	{ID: "l3", Name: "Fenerler", Slug: "fenerler", ParentID: models.StringPtr("c2"), Order: 0},
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store   *store.MemoryStore
	Hub     *events.Hub
	Service *category.Service
	Public  *Public
	Admin   *Admin
}

// newTestEnv creates a seeded in-memory environment without a tree cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.NewMemoryStore("")
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	ctx := context.Background()
	for _, c := range seedCategories {
		c := c
		if _, err := st.Create(ctx, &c); err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	hub := events.NewHub(nil)
	t.Cleanup(hub.Close)
	svc := category.NewService(st, hub)

	return &testEnv{
		Store:   st,
		Hub:     hub,
		Service: svc,
		Public:  NewPublic(svc, nil),
		Admin:   NewAdmin(svc, nil),
	}
}

// failingRepo simulates an unreachable database.
type failingRepo struct{}

var errDown = errors.New("connection refused")

func (failingRepo) List(context.Context) ([]models.Category, error) { return nil, errDown }
func (failingRepo) FindByID(context.Context, string) (*models.Category, error) {
	return nil, errDown
}
func (failingRepo) Create(context.Context, *models.Category) (*models.Category, error) {
	return nil, errDown
}
func (failingRepo) Update(context.Context, *models.Category) (*models.Category, error) {
	return nil, errDown
}
func (failingRepo) SwapOrder(context.Context, string, string) error { return errDown }
func (failingRepo) DeleteMany(context.Context, []string) error      { return errDown }

// withChiURLParams adds chi URL parameters (key, value pairs) to a request.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes the recorder's JSON body into a value of type T.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

// subscribe returns a channel of hub events for the duration of the test.
func subscribe(t *testing.T, hub *events.Hub) <-chan events.Event {
	t.Helper()
	ch, cancel := hub.Subscribe(32)
	t.Cleanup(cancel)
	return ch
}
