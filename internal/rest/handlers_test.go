// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-seaccess/pkg/health"
	"github.com/jeremyhahn/go-seaccess/pkg/logging"
	"github.com/jeremyhahn/go-seaccess/pkg/registry"
	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = `
	<policy>
		<signer certificate="aa01">
			<package name="com.x"/>
		</signer>
	</policy>`

func newTestServer(t *testing.T) (*Server, *health.Checker) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "access.xml")
	require.NoError(t, os.WriteFile(path, []byte(testPolicy), 0o644))

	cert, err := seaccess.CertificateFromHex("aa01")
	require.NoError(t, err)

	reg := registry.NewMemory()
	reg.Install(1000, "com.x", cert)
	reg.Install(1001, "com.y", cert)

	controller, err := seaccess.New(reg, path,
		seaccess.WithLogger(logging.NewLoggerTo(io.Discard, false)))
	require.NoError(t, err)

	checker := health.NewChecker()
	server, err := NewServer(&Config{
		Controller: controller,
		Checker:    checker,
		Logger:     logging.NewLoggerTo(io.Discard, false),
		Version:    "test",
	})
	require.NoError(t, err)
	return server, checker
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckHandler(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	t.Run("grants a whitelisted package", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/check",
			`{"uid":1000,"package":"com.x"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Granted)
		assert.Equal(t, 1000, resp.UID)
		assert.Equal(t, "com.x", resp.Package)
	})

	t.Run("denies an unlisted package with 200", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/check",
			`{"uid":1001,"package":"com.y"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Granted)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/check", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing package", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/check", `{"uid":1000}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects negative uid", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/check",
			`{"uid":-1,"package":"com.x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCacheAndPolicyHandlers(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	t.Run("invalidate cache", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/cache/invalidate", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("policy dump", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/policy", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, rec.Body.String(), "whitelist=")
		assert.Contains(t, rec.Body.String(), "aa01 [com.x, ]")
	})

	t.Run("policy reload", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/policy/reload", "")
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}

func TestHealthHandlers(t *testing.T) {
	server, checker := newTestServer(t)
	handler := server.Handler()

	t.Run("legacy health", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "test", resp.Version)
	})

	t.Run("liveness", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/health/live", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("startup before MarkStarted", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/health/startup", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("startup after MarkStarted", func(t *testing.T) {
		checker.MarkStarted()
		rec := doJSON(t, handler, http.MethodGet, "/health/startup", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness reflects registered checks", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics endpoint responds", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "seaccess_")
	})
}

func TestNewServerValidation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.Error(t, err)
	})

	t.Run("missing controller", func(t *testing.T) {
		_, err := NewServer(&Config{})
		assert.Error(t, err)
	})
}
