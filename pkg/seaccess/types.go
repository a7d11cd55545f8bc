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

import "encoding/hex"

// Certificate identifies the entity that signed an application package.
// The bytes are opaque to this package; they are only ever compared for
// equality and rendered as hex for policy authoring and diagnostics.
type Certificate struct {
	raw []byte
}

// certKey is the map key derived from the raw certificate bytes. Using the
// byte content (not object identity) gives structural equality and hashing.
type certKey string

// CertificateFromHex parses a hex-encoded certificate as it appears in the
// policy document's certificate attribute.
func CertificateFromHex(s string) (Certificate, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return Certificate{}, ErrInvalidCertificate
	}
	return Certificate{raw: raw}, nil
}

// CertificateFromBytes wraps raw certificate bytes. The input is copied.
func CertificateFromBytes(b []byte) Certificate {
	raw := make([]byte, len(b))
	copy(raw, b)
	return Certificate{raw: raw}
}

// Bytes returns a copy of the raw certificate bytes.
func (c Certificate) Bytes() []byte {
	b := make([]byte, len(c.raw))
	copy(b, c.raw)
	return b
}

// String renders the certificate as lowercase hex. This form is meant for
// policy-file authoring and log output, not for security decisions.
func (c Certificate) String() string {
	return hex.EncodeToString(c.raw)
}

// IsZero reports whether the certificate carries no bytes.
func (c Certificate) IsZero() bool {
	return len(c.raw) == 0
}

// Equal reports whether two certificates carry identical bytes.
func (c Certificate) Equal(other Certificate) bool {
	return c.key() == other.key()
}

func (c Certificate) key() certKey {
	return certKey(c.raw)
}

// AppInfo describes an application whose UID and package name have already
// been verified against the package registry by the caller. Check accepts it
// without re-verifying the UID/package association.
type AppInfo struct {
	UID         int
	PackageName string
}

// PackageRegistry resolves caller identities and package signatures. It is
// the OS package/identity database seen through the narrow window this gate
// needs. Implementations must be safe for concurrent use and are expected to
// answer promptly; a slow or failing registry surfaces as a denied check,
// never as a crash.
type PackageRegistry interface {
	// PackagesForUID returns the package names currently running under the
	// given UID. The result may be empty.
	PackagesForUID(uid int) []string

	// SigningCertificates returns the certificates the named package is
	// signed with, or ErrPackageNotFound if the registry does not know the
	// package.
	SigningCertificates(pkg string) ([]Certificate, error)
}
