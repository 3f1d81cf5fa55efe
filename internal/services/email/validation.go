package email

import (
	"net"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validator checks whether an address is likely deliverable.
type Validator interface {
	IsValidEmail(email string) bool
}

// placeholder domains that never receive mail
var invalidDomains = map[string]bool{
	"test.com":    true,
	"example.com": true,
	"localhost":   true,
}

// DNSValidator validates syntax and then confirms the domain publishes MX
// records. rigaku.com is accepted without a lookup so internal addresses keep
// working on isolated networks.
type DNSValidator struct {
	lookupMX func(domain string) ([]*net.MX, error)
}

func NewDNSValidator() *DNSValidator {
	return &DNSValidator{lookupMX: net.LookupMX}
}

func (v *DNSValidator) IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])

	if invalidDomains[domain] {
		return false
	}
	if domain == "rigaku.com" {
		return true
	}

	records, err := v.lookupMX(domain)
	if err != nil || len(records) == 0 {
		logrus.Warnf("DNS validation failed for %s: %v", domain, err)
		return false
	}
	return true
}
