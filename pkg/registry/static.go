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

// Package registry provides PackageRegistry implementations for the access
// gate. Static serves a fixed manifest loaded from YAML; Memory is a mutable
// registry for tests and embedding hosts.
package registry

import (
	"fmt"
	"os"

	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document describing a static package registry.
//
//	uids:
//	  10001:
//	    - com.example.wallet
//	packages:
//	  com.example.wallet:
//	    certificates:
//	      - "308201a3..."
type Manifest struct {
	UIDs     map[int][]string           `yaml:"uids"`
	Packages map[string]PackageManifest `yaml:"packages"`
}

// PackageManifest describes one package's signing certificates.
type PackageManifest struct {
	Certificates []string `yaml:"certificates"`
}

// Static is an immutable PackageRegistry built from a Manifest. Safe for
// concurrent use without locking.
type Static struct {
	uids  map[int][]string
	certs map[string][]seaccess.Certificate
}

// NewStatic builds a Static registry from a manifest. Certificates must be
// valid hex.
func NewStatic(manifest *Manifest) (*Static, error) {
	if manifest == nil {
		return nil, fmt.Errorf("registry: manifest is required")
	}

	s := &Static{
		uids:  make(map[int][]string, len(manifest.UIDs)),
		certs: make(map[string][]seaccess.Certificate, len(manifest.Packages)),
	}
	for uid, pkgs := range manifest.UIDs {
		s.uids[uid] = append([]string(nil), pkgs...)
	}
	for pkg, pm := range manifest.Packages {
		certs := make([]seaccess.Certificate, 0, len(pm.Certificates))
		for _, hexCert := range pm.Certificates {
			cert, err := seaccess.CertificateFromHex(hexCert)
			if err != nil {
				return nil, fmt.Errorf("registry: package %s: %w", pkg, err)
			}
			certs = append(certs, cert)
		}
		s.certs[pkg] = certs
	}
	return s, nil
}

// LoadStatic reads a manifest from the YAML file at path and builds a Static
// registry from it.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to read manifest %s: %w", path, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("registry: failed to parse manifest %s: %w", path, err)
	}
	return NewStatic(&manifest)
}

// PackagesForUID returns the package names registered under the given UID.
func (s *Static) PackagesForUID(uid int) []string {
	return append([]string(nil), s.uids[uid]...)
}

// SigningCertificates returns the certificates the named package is signed
// with.
func (s *Static) SigningCertificates(pkg string) ([]seaccess.Certificate, error) {
	certs, ok := s.certs[pkg]
	if !ok {
		return nil, seaccess.ErrPackageNotFound
	}
	return append([]seaccess.Certificate(nil), certs...), nil
}
