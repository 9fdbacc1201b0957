// Package vendorconsent decodes IAB TCF consent strings of either format version.
package vendorconsent

import (
	"github.com/prebid/tcstring/errortypes"
	"github.com/prebid/tcstring/vendorconsent/tcf1"
	"github.com/prebid/tcstring/vendorconsent/tcf2"
)

// Consent is a decoded consent string. The concrete type is *tcf1.Consent or *tcf2.Consent.
type Consent interface {
	Version() uint8
}

// ParseString decodes a consent string, choosing the format from its first character.
// Strings starting with 'B' are TCF 1.1 and strings starting with 'C' are TCF 2.0.
func ParseString(consent string) (Consent, error) {
	if consent == "" {
		return nil, &errortypes.UnsupportedVersion{Message: "the consent string is empty"}
	}

	switch consent[0] {
	case 'B':
		parsed, err := tcf1.ParseString(consent)
		if err != nil {
			return nil, err
		}
		return parsed, nil
	case 'C':
		parsed, err := tcf2.ParseString(consent)
		if err != nil {
			return nil, err
		}
		return parsed, nil
	default:
		return nil, &errortypes.UnsupportedVersion{
			Message: "consent strings must start with 'B' for TCF 1.1 or 'C' for TCF 2.0",
		}
	}
}
