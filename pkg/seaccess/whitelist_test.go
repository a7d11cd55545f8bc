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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificate(t *testing.T) {
	t.Run("from hex", func(t *testing.T) {
		cert, err := CertificateFromHex("aabbcc")
		require.NoError(t, err)
		assert.Equal(t, "aabbcc", cert.String())
		assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, cert.Bytes())
		assert.False(t, cert.IsZero())
	})

	t.Run("rejects invalid hex", func(t *testing.T) {
		_, err := CertificateFromHex("zz")
		assert.ErrorIs(t, err, ErrInvalidCertificate)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := CertificateFromHex("")
		assert.ErrorIs(t, err, ErrInvalidCertificate)
	})

	t.Run("structural equality", func(t *testing.T) {
		a := CertificateFromBytes([]byte{1, 2, 3})
		b := CertificateFromBytes([]byte{1, 2, 3})
		c := CertificateFromBytes([]byte{1, 2, 4})
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})

	t.Run("bytes are copied", func(t *testing.T) {
		src := []byte{1, 2, 3}
		cert := CertificateFromBytes(src)
		src[0] = 9
		assert.Equal(t, []byte{1, 2, 3}, cert.Bytes())

		out := cert.Bytes()
		out[0] = 9
		assert.Equal(t, []byte{1, 2, 3}, cert.Bytes())
	})
}

func TestEntry(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		entry := &Entry{Certificate: CertificateFromBytes([]byte{1})}
		assert.True(t, entry.Wildcard())
		assert.False(t, entry.Contains("com.x"))
	})

	t.Run("explicit packages", func(t *testing.T) {
		entry := &Entry{
			Certificate: CertificateFromBytes([]byte{1}),
			Packages:    []string{"com.x", "com.y"},
		}
		assert.False(t, entry.Wildcard())
		assert.True(t, entry.Contains("com.x"))
		assert.False(t, entry.Contains("com.z"))
	})
}

func TestWhitelist(t *testing.T) {
	t.Run("empty whitelist has no entries", func(t *testing.T) {
		whitelist := emptyWhitelist()
		assert.Equal(t, 0, whitelist.Len())
		_, ok := whitelist.Entry(CertificateFromBytes([]byte{1}))
		assert.False(t, ok)
	})

	t.Run("certificates are sorted", func(t *testing.T) {
		certB := CertificateFromBytes([]byte{0xbb})
		certA := CertificateFromBytes([]byte{0xaa})
		whitelist := newWhitelist(map[certKey]*Entry{
			certB.key(): {Certificate: certB},
			certA.key(): {Certificate: certA},
		})

		certs := whitelist.Certificates()
		require.Len(t, certs, 2)
		assert.Equal(t, "aa", certs[0].String())
		assert.Equal(t, "bb", certs[1].String())
	})
}
