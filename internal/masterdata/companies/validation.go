package companies

import (
	"strings"
	"unicode"
)

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// NormalizeNIP strips every non-digit. Empty results become nil.
func NormalizeNIP(raw *string) *string {
	if raw == nil {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r <= '9' {
			return r
		}
		return -1
	}, *raw)
	if digits == "" {
		return nil
	}
	return &digits
}

// ValidNIP checks a normalized Polish tax id. A nil NIP is valid since the
// field is optional.
func ValidNIP(nip *string) bool {
	if nip == nil {
		return true
	}
	n := *nip
	if len(n) != 10 {
		return false
	}
	for i := 0; i < len(n); i++ {
		if n[i] < '0' || n[i] > '9' {
			return false
		}
	}
	sum := 0
	for i, w := range nipWeights {
		sum += int(n[i]-'0') * w
	}
	check := sum % 11
	if check == 10 {
		return false
	}
	return n[9]-'0' == byte(check)
}

func (s *Service) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}
