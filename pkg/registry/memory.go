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

package registry

import (
	"sync"

	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
)

// Memory is a mutable in-memory PackageRegistry. Hosts that track package
// installs and removals at runtime use it together with an OnChange callback
// that invalidates the gate's verdict cache. Thread-safe using a read-write
// mutex.
type Memory struct {
	mu       sync.RWMutex
	uids     map[int][]string
	certs    map[string][]seaccess.Certificate
	onChange []func()
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		uids:  make(map[int][]string),
		certs: make(map[string][]seaccess.Certificate),
	}
}

// OnChange registers a callback invoked after every Install or Uninstall.
// The gate's InvalidateCache is the typical callback.
func (m *Memory) OnChange(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// Install registers a package under the given UID with its signing
// certificates.
func (m *Memory) Install(uid int, pkg string, certs ...seaccess.Certificate) {
	m.mu.Lock()
	m.uids[uid] = append(m.uids[uid], pkg)
	m.certs[pkg] = append([]seaccess.Certificate(nil), certs...)
	m.mu.Unlock()
	m.notify()
}

// Uninstall removes a package from every UID it is registered under.
func (m *Memory) Uninstall(pkg string) {
	m.mu.Lock()
	delete(m.certs, pkg)
	for uid, pkgs := range m.uids {
		kept := pkgs[:0]
		for _, p := range pkgs {
			if p != pkg {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(m.uids, uid)
		} else {
			m.uids[uid] = kept
		}
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) notify() {
	m.mu.RLock()
	callbacks := append([]func(){}, m.onChange...)
	m.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// PackagesForUID returns the package names registered under the given UID.
func (m *Memory) PackagesForUID(uid int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.uids[uid]...)
}

// SigningCertificates returns the certificates the named package is signed
// with.
func (m *Memory) SigningCertificates(pkg string) ([]seaccess.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	certs, ok := m.certs[pkg]
	if !ok {
		return nil, seaccess.ErrPackageNotFound
	}
	return append([]seaccess.Certificate(nil), certs...), nil
}
