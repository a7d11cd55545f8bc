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

package seaccess

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jeremyhahn/go-seaccess/pkg/logging"
	"github.com/jeremyhahn/go-seaccess/pkg/metrics"
)

// policySnapshot is the unit of atomic policy replacement. Readers load the
// current snapshot once per operation and never observe a partially rebuilt
// whitelist.
type policySnapshot struct {
	whitelist *Whitelist
	debug     bool
}

// Controller is the access decision engine. It combines identity resolution,
// whitelist lookup and per-UID verdict caching into a boolean verdict.
//
// A Controller is safe for concurrent use. Check, CheckApp, InvalidateCache
// and Dump may be called from multiple goroutines; Reload may run
// concurrently with checks and swaps the policy in as a unit.
type Controller struct {
	registry      PackageRegistry
	logger        *logging.Logger
	policyPath    string
	brokerPackage string

	snapshot atomic.Pointer[policySnapshot]

	// mu guards the verdict cache and serializes check operations with
	// respect to each other and to cache invalidation. Coarse on purpose:
	// this is a security check, not a hot path.
	mu    sync.Mutex
	cache *verdictCache
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to logging.DefaultLogger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithBrokerPackage names the single trusted broker service package that may
// request access on behalf of a package it does not own. Empty (the default)
// disables the broker fallback.
func WithBrokerPackage(pkg string) Option {
	return func(c *Controller) {
		c.brokerPackage = pkg
	}
}

// New creates a Controller and performs the initial policy load from
// policyPath. Load failures are not errors: they degrade to an empty
// whitelist that denies every package.
func New(registry PackageRegistry, policyPath string, opts ...Option) (*Controller, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	c := &Controller{
		registry:   registry,
		policyPath: policyPath,
		cache:      newVerdictCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.DefaultLogger()
	}

	c.Reload()
	return c, nil
}

// Reload re-runs the full policy load and atomically swaps the whitelist.
// There is no partial or incremental update. The verdict cache is cleared so
// cached grants from the previous policy cannot outlive it.
func (c *Controller) Reload() {
	whitelist, debug := loadPolicyFile(c.policyPath, c.logger)
	c.snapshot.Store(&policySnapshot{whitelist: whitelist, debug: debug})
	metrics.SetWhitelistEntries(whitelist.Len())
	c.InvalidateCache()
}

// Check reports whether the {uid, pkg} combination may use the secure
// element. The claimed package is first verified to actually run under the
// calling UID; only a genuine match consults and populates the verdict
// cache.
func (c *Controller) Check(uid int, pkg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debugf("check %s uid %d", pkg, uid)

	access := false
	packageFound := false
	for _, owned := range c.registry.PackagesForUID(uid) {
		if owned == pkg {
			packageFound = true

			if verdict, ok := c.cache.get(uid); ok {
				metrics.RecordCheck(verdict, metrics.SourceCache)
				return verdict
			}

			access = c.checkPackageAccess(pkg)
			break
		}
	}

	// Narrow compatibility shim: the one configured broker service package
	// may request access on behalf of a package it does not own. Verdicts
	// from this path never enter the UID cache.
	source := metrics.SourcePolicy
	if !packageFound && c.brokerPackage != "" {
		for _, owned := range c.registry.PackagesForUID(uid) {
			if owned == c.brokerPackage {
				access = c.checkPackageAccess(pkg)
				source = metrics.SourceBroker
				break
			}
		}
	}

	c.logger.Debugf("access for %s uid %d is %t", pkg, uid, access)
	if packageFound {
		c.cache.put(uid, access)
		metrics.SetCacheSize(c.cache.len())
	}
	metrics.RecordCheck(access, source)
	return access
}

// CheckApp reports whether the described application may use the secure
// element. The descriptor is assumed to come from the package registry, so
// the UID/package association is not re-verified.
func (c *Controller) CheckApp(app AppInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	verdict, ok := c.cache.get(app.UID)
	if !ok {
		verdict = c.checkPackageAccess(app.PackageName)
		c.cache.put(app.UID, verdict)
		metrics.SetCacheSize(c.cache.len())
		metrics.RecordCheck(verdict, metrics.SourcePolicy)
		return verdict
	}
	metrics.RecordCheck(verdict, metrics.SourceCache)
	return verdict
}

// checkPackageAccess consults the whitelist directly, bypassing the cache.
// A package is granted access if any one of its signing certificates has a
// wildcard entry or explicitly lists the package.
func (c *Controller) checkPackageAccess(pkg string) bool {
	snap := c.snapshot.Load()

	certs, err := c.registry.SigningCertificates(pkg)
	if err != nil {
		if !errors.Is(err, ErrPackageNotFound) {
			c.logger.Warnf("signing certificate lookup for %s failed: %v", pkg, err)
		}
		return false
	}

	for _, cert := range certs {
		entry, ok := snap.whitelist.Entry(cert)
		if !ok {
			continue
		}
		if entry.Wildcard() {
			c.logger.Debugf("granted secure element access to %s (wildcard)", pkg)
			return true
		}
		if entry.Contains(pkg) {
			c.logger.Debugf("granted secure element access to %s (explicit)", pkg)
			return true
		}
	}

	if snap.debug {
		// Aid for policy authors: show what a matching signer entry would
		// have to whitelist. Not a security-relevant output.
		c.logger.Warnf("denied secure element access for %s with signature:", pkg)
		for _, cert := range certs {
			c.logger.Warnf("%s", cert)
		}
	}
	return false
}

// InvalidateCache clears the verdict cache. The host calls this whenever the
// installed package set changes. Safe to call concurrently with in-flight
// checks.
func (c *Controller) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.invalidate()
	metrics.SetCacheSize(0)
	metrics.RecordCacheInvalidation()
}

// CacheLen returns the number of cached UID verdicts.
func (c *Controller) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.len()
}

// WhitelistLen returns the number of signer entries in the current policy.
func (c *Controller) WhitelistLen() int {
	return c.snapshot.Load().whitelist.Len()
}

// Debug reports whether the current policy snapshot carries the debug
// marker.
func (c *Controller) Debug() bool {
	return c.snapshot.Load().debug
}

// Dump renders the whitelist and verdict cache for operator diagnostics.
// The output is deterministic (entries sorted by certificate, cache sorted
// by UID) and reflects a consistent snapshot of the cache, possibly
// momentarily stale with respect to concurrent checks.
func (c *Controller) Dump() string {
	snap := c.snapshot.Load()

	var b strings.Builder
	b.WriteString("whitelist=\n")
	for _, cert := range snap.whitelist.Certificates() {
		entry, _ := snap.whitelist.Entry(cert)
		fmt.Fprintf(&b, "\t%s [", cert)
		for _, pkg := range entry.Packages {
			fmt.Fprintf(&b, "%s, ", pkg)
		}
		b.WriteString("]\n")
	}

	c.mu.Lock()
	verdicts := c.cache.snapshot()
	c.mu.Unlock()

	b.WriteString("cache=\n")
	uids := make([]int, 0, len(verdicts))
	for uid := range verdicts {
		uids = append(uids, uid)
	}
	sort.Ints(uids)
	for _, uid := range uids {
		fmt.Fprintf(&b, "\t%d %t\n", uid, verdicts[uid])
	}
	return b.String()
}
