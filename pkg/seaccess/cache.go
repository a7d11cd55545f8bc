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

// verdictCache caches the last computed verdict per calling UID. Every
// package running under a UID must be signed with the same certificate set,
// so a UID-keyed verdict stays valid until the installed package set changes
// and the host invalidates the cache.
//
// The cache is not safe for concurrent use on its own; the Controller
// serializes all access under its mutex.
type verdictCache struct {
	verdicts map[int]bool
}

func newVerdictCache() *verdictCache {
	return &verdictCache{verdicts: make(map[int]bool)}
}

func (c *verdictCache) get(uid int) (verdict, ok bool) {
	verdict, ok = c.verdicts[uid]
	return verdict, ok
}

func (c *verdictCache) put(uid int, verdict bool) {
	c.verdicts[uid] = verdict
}

func (c *verdictCache) invalidate() {
	clear(c.verdicts)
}

func (c *verdictCache) len() int {
	return len(c.verdicts)
}

// snapshot returns a copy of the cached verdicts for diagnostics.
func (c *verdictCache) snapshot() map[int]bool {
	out := make(map[int]bool, len(c.verdicts))
	for uid, verdict := range c.verdicts {
		out[uid] = verdict
	}
	return out
}
