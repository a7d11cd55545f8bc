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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeremyhahn/go-seaccess/pkg/logging"
	"github.com/jeremyhahn/go-seaccess/pkg/metrics"
)

// Policy document element and attribute names.
const (
	elemSigner  = "signer"
	elemPackage = "package"
	elemDebug   = "debug"

	attrCertificate = "certificate"
	attrName        = "name"
)

// parsePolicy reads the policy document and builds the whitelist.
//
// Validation policy: unexpected elements and attributes are ignored and
// processing continues, except for errors inside a signer group. Those could
// cause package names to be dropped and therefore wildcard access granted by
// mistake, so any malformed package declaration invalidates the entire
// enclosing signer group. The returned error means the document itself is
// malformed; the caller must then discard the whitelist outright.
func parsePolicy(r io.Reader, log *logging.Logger) (*Whitelist, bool, error) {
	dec := xml.NewDecoder(r)
	entries := make(map[certKey]*Entry)

	// group is the currently open, still-valid signer group. It is nil
	// between groups and after a group has been invalidated.
	var group *Entry
	var debug bool

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, debug, fmt.Errorf("seaccess: malformed policy document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemSigner:
				group = nil
				hexCert, ok := findAttr(t, attrCertificate)
				if !ok {
					log.Warnf("signer element is missing %s attribute, ignoring group", attrCertificate)
					continue
				}
				cert, err := CertificateFromHex(hexCert)
				if err != nil {
					log.Warnf("signer element carries an undecodable certificate, ignoring group: %v", err)
					continue
				}
				if _, dup := entries[cert.key()]; dup {
					log.Warnf("duplicate certificate %s, ignoring group", cert)
					continue
				}
				group = &Entry{Certificate: cert}

			case elemPackage:
				if group == nil {
					log.Warnf("package element outside signer group, ignoring")
					continue
				}
				name, ok := findAttr(t, attrName)
				if !ok {
					log.Warnf("package element is missing %s attribute, ignoring signer group", attrName)
					group = nil
					continue
				}
				if group.Contains(name) {
					log.Warnf("duplicate package name %s in signer group, ignoring", name)
					continue
				}
				group.Packages = append(group.Packages, name)

			case elemDebug:
				debug = true
			}

		case xml.EndElement:
			if t.Name.Local != elemSigner {
				continue
			}
			if group == nil {
				log.Warnf("mismatched signer end element")
				continue
			}
			entries[group.Certificate.key()] = group
			group = nil
		}
	}

	return newWhitelist(entries), debug, nil
}

func findAttr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// loadPolicyFile reads and parses the policy document at path. It never
// fails: a missing document yields an empty whitelist (deny all), and a
// document that cannot be read or parsed discards the whitelist entirely.
// The file handle is released on every path.
func loadPolicyFile(path string, log *logging.Logger) (*Whitelist, bool) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("no policy document at %s, secure element access denied for all packages", path)
			metrics.RecordPolicyLoad(metrics.LoadAbsent)
		} else {
			log.Errorf("failed to open policy document %s: %v", path, err)
			metrics.RecordPolicyLoad(metrics.LoadError)
		}
		return emptyWhitelist(), false
	}
	defer func() { _ = f.Close() }()

	whitelist, debug, err := parsePolicy(f, log)
	if err != nil {
		// Fail closed: a corrupt policy must never widen access.
		log.Warnf("discarding access whitelist: %v", err)
		metrics.RecordPolicyLoad(metrics.LoadError)
		return emptyWhitelist(), debug
	}

	log.Infof("read %d signer certificate(s) from %s", whitelist.Len(), path)
	metrics.RecordPolicyLoad(metrics.LoadOK)
	return whitelist, debug
}
