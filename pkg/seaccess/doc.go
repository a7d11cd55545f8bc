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

// Package seaccess decides, per calling application, whether that application
// may use the secure element.
//
// The decision is driven by an XML policy document that whitelists
// applications by the certificate(s) used to sign them. A signer entry with no
// package names grants wildcard access to every package carrying that
// certificate; an entry with package names grants access to exactly those
// packages. The policy is loaded once into an immutable whitelist and
// verdicts are cached per calling UID until the host invalidates the cache
// (typically on package install or removal).
//
// The package registry that maps UIDs to package names and package names to
// signing certificates is an external collaborator supplied through the
// PackageRegistry interface. See pkg/registry for ready-made implementations.
//
// A corrupt or unreadable policy document always fails closed: the whitelist
// is discarded and every check denies.
package seaccess
