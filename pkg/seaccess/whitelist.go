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

import "sort"

// Entry associates a signing certificate with the package names authorized
// under it. An entry with no package names is a wildcard: any package signed
// with the certificate is authorized.
type Entry struct {
	Certificate Certificate
	Packages    []string
}

// Wildcard reports whether the entry authorizes every package signed with
// its certificate.
func (e *Entry) Wildcard() bool {
	return len(e.Packages) == 0
}

// Contains reports whether the named package is explicitly listed.
func (e *Entry) Contains(pkg string) bool {
	for _, p := range e.Packages {
		if p == pkg {
			return true
		}
	}
	return false
}

// Whitelist maps signing certificates to their authorized packages. It is
// built once by the policy parser and immutable afterwards, so reads need no
// locking. A reload builds a fresh Whitelist and swaps it in as a unit.
type Whitelist struct {
	entries map[certKey]*Entry
}

func newWhitelist(entries map[certKey]*Entry) *Whitelist {
	if entries == nil {
		entries = make(map[certKey]*Entry)
	}
	return &Whitelist{entries: entries}
}

// emptyWhitelist returns a whitelist that denies every package. Used when the
// policy document is missing or fails to load.
func emptyWhitelist() *Whitelist {
	return newWhitelist(nil)
}

// Entry returns the whitelist entry for the given certificate.
func (w *Whitelist) Entry(cert Certificate) (*Entry, bool) {
	e, ok := w.entries[cert.key()]
	return e, ok
}

// Len returns the number of signer entries.
func (w *Whitelist) Len() int {
	return len(w.entries)
}

// Certificates returns every whitelisted certificate sorted by hex
// rendering, so dumps and diagnostics are deterministic.
func (w *Whitelist) Certificates() []Certificate {
	certs := make([]Certificate, 0, len(w.entries))
	for _, e := range w.entries {
		certs = append(certs, e.Certificate)
	}
	sort.Slice(certs, func(i, j int) bool {
		return certs[i].String() < certs[j].String()
	})
	return certs
}
