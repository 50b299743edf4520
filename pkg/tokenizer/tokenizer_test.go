package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logjuicer/logjuicer/pkg/tokenizer"
)

func TestProcess_S1(t *testing.T) {
	out := tokenizer.Process("Created interface: br-42")
	assert.NotContains(t, out, "br-42")

	assert.Equal(t, "Instance created", tokenizer.Process("Instance 0xdeadbeef42 created"))

	out = tokenizer.Process("Accepted publickey: RSA SHA256:UkrwIX8QHA4B2Bny0XHyqgSXM7wFMQTEDtT+PpY9Ep4")
	assert.Equal(t, "Accepted publickey RNGH", out)
}

func TestProcess_S2_Addresses(t *testing.T) {
	assert.Equal(t, "listen_port RNGI", tokenizer.Process("listen_port fe80::f816:3eff:fe47:5142"))

	out := tokenizer.Process("mysql+pymysql://root:secretdatabase@[::1]/cinder?")
	assert.Equal(t, "mysql pymysql //root secretdatabase RNGI /cinder", out)
}

func TestProcess_VolatilityErasure(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"uuid", "request 550e8400-e29b-41d4-a716-446655440000 accepted", tokenizer.TokenRandomUUID},
		// a fully dash-less UUID is a plain 32-char hex run, so the
		// power-of-two constant rule (applied before the UUID rule) wins.
		{"uuid-dashless", "request 550e8400e29b41d4a716446655440000 accepted", tokenizer.TokenRandomNumber},
		{"ipv4", "connection from 192.168.1.100 refused", tokenizer.TokenRandomAddress},
		{"mac", "link detected aa:bb:cc:dd:ee:ff up", tokenizer.TokenRandomAddress},
		{"sha256", "fingerprint SHA256:UkrwIX8QHA4B2Bny0XHyqgSXM7wFMQTEDtT+PpY9Ep4 verified", tokenizer.TokenSHA256},
		{"hex32", "checksum d41d8cd98f00b204e9800998ecf8427e matched", tokenizer.TokenRandomNumber},
		{"hex40", "sha1 da39a3ee5e6b4b0d3255bfef95601890afd80709 matched", tokenizer.TokenRandomNumber},
		{"hex64", strings.Repeat("deadbeef", 8) + " matched", tokenizer.TokenRandomNumber},
		{"hex128", strings.Repeat("deadbeef", 16) + " matched", tokenizer.TokenRandomNumber},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := tokenizer.Process(c.line)
			assert.Contains(t, out, c.want)
		})
	}
}

func TestProcess_Idempotent(t *testing.T) {
	lines := []string{
		"Created interface: br-42",
		"Instance 0xdeadbeef42 created",
		"Accepted publickey: RSA SHA256:UkrwIX8QHA4B2Bny0XHyqgSXM7wFMQTEDtT+PpY9Ep4",
		"listen_port fe80::f816:3eff:fe47:5142",
		"2024-01-02 ERROR something failed to warn about it",
		"",
		"random non matching line without markers",
	}
	for _, l := range lines {
		once := tokenizer.Process(l)
		twice := tokenizer.Process(once)
		require.Equal(t, once, twice, "tokenize(tokenize(%q)) should equal tokenize(%q)", l, l)
	}
}

func TestProcess_FailureAmplification(t *testing.T) {
	out := tokenizer.Process("something went wrong: the operation failed badly")
	assert.Contains(t, out, "failA")
	assert.Contains(t, out, "failB")
	assert.Contains(t, out, "failC")
	assert.Contains(t, out, "failD")
}

func TestProcess_ShortWordsDropped(t *testing.T) {
	out := tokenizer.Process("a an if to be or not")
	assert.Empty(t, out)
}

func TestProcess_RawLineDrop(t *testing.T) {
	assert.Empty(t, tokenizer.Process(`"GET / HTTP/1.1"`))
	assert.Empty(t, tokenizer.Process("-----BEGIN CERTIFICATE-----"))
	assert.Empty(t, tokenizer.Process(strings.Repeat("x", 64)))
}

func TestDropNonASCII(t *testing.T) {
	assert.Equal(t, "plain ascii", tokenizer.DropNonASCII([]byte("plain ascii")))
	assert.Equal(t, "caf", tokenizer.DropNonASCII([]byte("caf\xc3\xa9")))
}
