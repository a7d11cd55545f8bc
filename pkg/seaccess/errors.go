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

import "errors"

var (
	// ErrRegistryRequired indicates a package registry is required but was
	// not provided.
	ErrRegistryRequired = errors.New("seaccess: package registry is required")

	// ErrPackageNotFound indicates the package registry does not know the
	// requested package. Checks treat it as a denial, not a fault.
	ErrPackageNotFound = errors.New("seaccess: package not found")

	// ErrInvalidCertificate indicates a certificate attribute that could not
	// be decoded. The enclosing signer group is dropped when this occurs.
	ErrInvalidCertificate = errors.New("seaccess: invalid certificate encoding")
)
