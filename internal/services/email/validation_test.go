package email

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidatorWithMX(records []*net.MX, err error) *DNSValidator {
	return &DNSValidator{
		lookupMX: func(string) ([]*net.MX, error) {
			return records, err
		},
	}
}

func TestIsValidEmailSyntax(t *testing.T) {
	v := newValidatorWithMX([]*net.MX{{Host: "mx.example.org"}}, nil)

	assert.False(t, v.IsValidEmail("not-an-email"))
	assert.False(t, v.IsValidEmail("missing-domain@"))
	assert.False(t, v.IsValidEmail("Jane Doe <jane@corp.org>"))
	assert.True(t, v.IsValidEmail("jane@corp.org"))
}

func TestIsValidEmailRejectsPlaceholderDomains(t *testing.T) {
	v := newValidatorWithMX([]*net.MX{{Host: "mx.example.org"}}, nil)

	assert.False(t, v.IsValidEmail("jane@test.com"))
	assert.False(t, v.IsValidEmail("jane@example.com"))
	assert.False(t, v.IsValidEmail("jane@localhost"))
}

func TestIsValidEmailAcceptsRigakuWithoutLookup(t *testing.T) {
	lookups := 0
	v := &DNSValidator{
		lookupMX: func(string) ([]*net.MX, error) {
			lookups++
			return nil, errors.New("dns unavailable")
		},
	}

	assert.True(t, v.IsValidEmail("jane.doe@rigaku.com"))
	assert.Zero(t, lookups, "rigaku.com must not require DNS")
}

func TestIsValidEmailRequiresMXRecords(t *testing.T) {
	assert.False(t, newValidatorWithMX(nil, errors.New("NXDOMAIN")).IsValidEmail("jane@corp.org"))
	assert.False(t, newValidatorWithMX(nil, nil).IsValidEmail("jane@corp.org"))
	assert.True(t, newValidatorWithMX([]*net.MX{{Host: "mx.corp.org"}}, nil).IsValidEmail("jane@corp.org"))
}
