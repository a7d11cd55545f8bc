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
	"os"
	"path/filepath"
	"testing"

	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
uids:
  10001:
    - com.example.wallet
    - com.example.wallet.helper
  10002:
    - com.example.transit
packages:
  com.example.wallet:
    certificates:
      - "aa01"
  com.example.wallet.helper:
    certificates:
      - "aa01"
  com.example.transit:
    certificates:
      - "bb02"
      - "cc03"
`

func TestLoadStatic(t *testing.T) {
	t.Run("loads a manifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

		reg, err := LoadStatic(path)
		require.NoError(t, err)

		assert.Equal(t,
			[]string{"com.example.wallet", "com.example.wallet.helper"},
			reg.PackagesForUID(10001))

		certs, err := reg.SigningCertificates("com.example.transit")
		require.NoError(t, err)
		require.Len(t, certs, 2)
		assert.Equal(t, "bb02", certs[0].String())
		assert.Equal(t, "cc03", certs[1].String())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStatic(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		require.NoError(t, os.WriteFile(path, []byte("uids: ["), 0o644))
		_, err := LoadStatic(path)
		assert.Error(t, err)
	})

	t.Run("invalid certificate hex", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		manifest := "packages:\n  com.x:\n    certificates: [\"nope\"]\n"
		require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
		_, err := LoadStatic(path)
		assert.ErrorIs(t, err, seaccess.ErrInvalidCertificate)
	})
}

func TestStatic(t *testing.T) {
	reg, err := NewStatic(&Manifest{
		UIDs: map[int][]string{10001: {"com.x"}},
		Packages: map[string]PackageManifest{
			"com.x": {Certificates: []string{"aa01"}},
		},
	})
	require.NoError(t, err)

	t.Run("unknown uid yields empty set", func(t *testing.T) {
		assert.Empty(t, reg.PackagesForUID(9999))
	})

	t.Run("unknown package", func(t *testing.T) {
		_, err := reg.SigningCertificates("com.absent")
		assert.ErrorIs(t, err, seaccess.ErrPackageNotFound)
	})

	t.Run("results are copies", func(t *testing.T) {
		pkgs := reg.PackagesForUID(10001)
		require.Len(t, pkgs, 1)
		pkgs[0] = "mutated"
		assert.Equal(t, []string{"com.x"}, reg.PackagesForUID(10001))
	})

	t.Run("nil manifest", func(t *testing.T) {
		_, err := NewStatic(nil)
		assert.Error(t, err)
	})
}
