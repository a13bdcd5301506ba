// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/tcms-go/internal/auth"
	"github.com/olegiv/tcms-go/internal/cache"
	"github.com/olegiv/tcms-go/internal/i18n"
	"github.com/olegiv/tcms-go/internal/imaging"
	"github.com/olegiv/tcms-go/internal/middleware"
	"github.com/olegiv/tcms-go/internal/store"
	"github.com/olegiv/tcms-go/internal/testutil"
	"github.com/olegiv/tcms-go/internal/upload"
)

const (
	testUsername = "admin"
	testPassword = "correct-horse-battery"
)

// testServer is a router over a migrated SQLite database.
type testServer struct {
	h          *Handler
	router     http.Handler
	uploadsDir string
	user       store.User
	token      string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, i18n.Init(nil))

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	uploadsDir := t.TempDir()
	tokens := auth.NewTokenManager(testutil.TestSecret, time.Hour)

	h := NewHandler(Deps{
		DB:       db,
		Cache:    mem,
		CacheTTL: time.Minute,
		Tokens:   tokens,
		Uploads:  upload.NewService(imaging.NewProcessor(uploadsDir, 0), 1<<20),
		Login: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			IPRateLimit: 1000,
			IPBurst:     1000,
		}),
		Logger: testutil.TestLogger(),
	})
	router := NewRouter(h, RouterConfig{
		Logger:     testutil.TestLogger(),
		Security:   middleware.DefaultSecurityHeadersConfig(true),
		UploadsDir: uploadsDir,
	})

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user, err := store.NewUsers(db).Create(context.Background(), store.CreateUserParams{
		Username:     testUsername,
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         store.RoleAdmin,
	})
	require.NoError(t, err)

	token, err := tokens.Issue(user.ID, user.Username, user.Role)
	require.NoError(t, err)

	return &testServer{h: h, router: router, uploadsDir: uploadsDir, user: user, token: token}
}

// do sends a request through the router. body is JSON-encoded unless it is
// nil, a string or an io.Reader.
func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case io.Reader:
		r = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded response body.
type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *Pagination       `json:"pagination"`
	Errors     []json.RawMessage `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// unmarshalData decodes the data field of a response into T.
func unmarshalData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

// fieldErrors returns the field -> message map of a validation response.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	out := make(map[string]string, len(body.Errors))
	for _, e := range body.Errors {
		out[e.Field] = e.Message
	}
	return out
}

// createRecord creates a row through the API and returns it.
func (s *testServer) createRecord(t *testing.T, path string, body map[string]any) map[string]any {
	t.Helper()
	rec := s.do(t, http.MethodPost, path, body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return unmarshalData[map[string]any](t, rec)
}
