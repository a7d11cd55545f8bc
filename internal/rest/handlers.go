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
	"net/http"

	"github.com/jeremyhahn/go-seaccess/pkg/health"
	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
)

// HandlerContext carries the dependencies shared by all HTTP handlers.
type HandlerContext struct {
	controller *seaccess.Controller
	checker    *health.Checker
	version    string
}

// NewHandlerContext creates a handler context.
func NewHandlerContext(controller *seaccess.Controller, checker *health.Checker, version string) *HandlerContext {
	return &HandlerContext{
		controller: controller,
		checker:    checker,
		version:    version,
	}
}

// CheckHandler decides whether the {uid, package} combination may use the
// secure element. The verdict is always a 200 response; denial is expressed
// in the body, never as an HTTP error.
func (h *HandlerContext) CheckHandler(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Package == "" {
		writeError(w, http.StatusBadRequest, "package is required")
		return
	}
	if req.UID < 0 {
		writeError(w, http.StatusBadRequest, "uid must be non-negative")
		return
	}

	granted := h.controller.Check(req.UID, req.Package)
	writeJSON(w, http.StatusOK, CheckResponse{
		UID:     req.UID,
		Package: req.Package,
		Granted: granted,
	})
}

// InvalidateCacheHandler clears the verdict cache. The host calls this when
// the installed package set changes.
func (h *HandlerContext) InvalidateCacheHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.InvalidateCache()
	w.WriteHeader(http.StatusNoContent)
}

// PolicyDumpHandler renders the whitelist and verdict cache as plain text
// for operator diagnostics.
func (h *HandlerContext) PolicyDumpHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.controller.Dump()))
}

// PolicyReloadHandler re-reads the policy document and swaps in the new
// whitelist. Reload never fails; a broken policy degrades to deny-all, which
// the operator can see in the dump and the logs.
func (h *HandlerContext) PolicyReloadHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.Reload()
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "reloaded"})
}

// HealthHandler is the legacy health endpoint.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  h.checker.Uptime().String(),
	})
}

// LivenessHandler implements the Kubernetes liveness probe.
func (h *HandlerContext) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	result := h.checker.Live(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// ReadinessHandler implements the Kubernetes readiness probe.
func (h *HandlerContext) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	results := h.checker.Ready(r.Context())
	status := http.StatusOK
	for _, result := range results {
		if result.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, results)
}

// StartupHandler implements the Kubernetes startup probe.
func (h *HandlerContext) StartupHandler(w http.ResponseWriter, r *http.Request) {
	result := h.checker.Startup(r.Context())
	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}
