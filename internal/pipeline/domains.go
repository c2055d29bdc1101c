package pipeline

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var rejectedPrefixes = []string{"http://", "https://", "www."}

// CollectDomains normalises user supplied domains. Entries are split on
// whitespace and commas, trimmed and emptied ones dropped. URLs, www.
// prefixed names and anything that is not a hostname are rejected.
func CollectDomains(raw []string) ([]string, error) {
	var domains []string
	for _, entry := range raw {
		for _, field := range strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		}) {
			domain := strings.TrimSpace(field)
			if domain == "" {
				continue
			}
			if err := checkDomain(domain); err != nil {
				return nil, err
			}
			domains = append(domains, domain)
		}
	}
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	return domains, nil
}

func checkDomain(domain string) error {
	lower := strings.ToLower(domain)
	for _, prefix := range rejectedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return &InvalidDomainError{Domain: domain, Reason: fmt.Sprintf("remove the %q prefix", prefix)}
		}
	}
	if err := validate.Var(domain, "required,hostname_rfc1123"); err != nil {
		return &InvalidDomainError{Domain: domain, Reason: "not a valid hostname"}
	}
	return nil
}

// ScanLevel is blockcheck's thoroughness tier.
type ScanLevel string

const (
	ScanQuick    ScanLevel = "quick"
	ScanStandard ScanLevel = "standard"
	ScanForce    ScanLevel = "force"
)

// ScanLevels lists the levels in increasing thoroughness.
var ScanLevels = []ScanLevel{ScanQuick, ScanStandard, ScanForce}

// Repeats is how many times blockcheck repeats each probe at this level.
func (l ScanLevel) Repeats() int {
	if l == ScanQuick {
		return 1
	}
	return 3
}

// ParseScanLevel validates a scan level name.
func ParseScanLevel(name string) (ScanLevel, error) {
	level := ScanLevel(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range ScanLevels {
		if level == known {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown scan level %q (want quick, standard or force)", name)
}
