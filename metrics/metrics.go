package metrics

import (
	"time"

	"github.com/prebid/tcstring/errortypes"
)

// DecodeLabels defines the labels that can be attached to the decode metrics.
type DecodeLabels struct {
	Version TCFVersion
	Status  DecodeStatus
}

// TCFVersion : The consent string format, judged by its first character
type TCFVersion string

// DecodeStatus : The outcome of a decode
type DecodeStatus string

const (
	TCFVersion1       TCFVersion = "v1"
	TCFVersion2       TCFVersion = "v2"
	TCFVersionUnknown TCFVersion = "err"
)

func TCFVersions() []TCFVersion {
	return []TCFVersion{
		TCFVersion1,
		TCFVersion2,
		TCFVersionUnknown,
	}
}

// TCFVersionOf labels a consent string by its version discriminator.
func TCFVersionOf(consent string) TCFVersion {
	switch {
	case len(consent) == 0:
		return TCFVersionUnknown
	case consent[0] == 'B':
		return TCFVersion1
	case consent[0] == 'C':
		return TCFVersion2
	default:
		return TCFVersionUnknown
	}
}

const (
	DecodeStatusOK                    DecodeStatus = "ok"
	DecodeStatusBadRequest            DecodeStatus = "bad_request"
	DecodeStatusInsufficientLength    DecodeStatus = "insufficient_length"
	DecodeStatusUnsupportedVersion    DecodeStatus = "unsupported_version"
	DecodeStatusInvalidBase64         DecodeStatus = "invalid_base64"
	DecodeStatusInvalidAlphabetOffset DecodeStatus = "invalid_alphabet_offset"
	DecodeStatusInvalidSection        DecodeStatus = "invalid_section"
	DecodeStatusInvalidSegment        DecodeStatus = "invalid_segment"
	DecodeStatusUnexpectedRange       DecodeStatus = "unexpected_range_section"
	DecodeStatusErr                   DecodeStatus = "err"
)

func DecodeStatuses() []DecodeStatus {
	return []DecodeStatus{
		DecodeStatusOK,
		DecodeStatusBadRequest,
		DecodeStatusInsufficientLength,
		DecodeStatusUnsupportedVersion,
		DecodeStatusInvalidBase64,
		DecodeStatusInvalidAlphabetOffset,
		DecodeStatusInvalidSection,
		DecodeStatusInvalidSegment,
		DecodeStatusUnexpectedRange,
		DecodeStatusErr,
	}
}

// DecodeStatusOf maps the error returned by a decoder to its status label.
func DecodeStatusOf(err error) DecodeStatus {
	if err == nil {
		return DecodeStatusOK
	}
	switch errortypes.ReadCode(err) {
	case errortypes.InsufficientLengthErrorCode:
		return DecodeStatusInsufficientLength
	case errortypes.UnsupportedVersionErrorCode:
		return DecodeStatusUnsupportedVersion
	case errortypes.InvalidURLSafeBase64ErrorCode:
		return DecodeStatusInvalidBase64
	case errortypes.InvalidAlphabetOffsetErrorCode:
		return DecodeStatusInvalidAlphabetOffset
	case errortypes.InvalidSectionDefinitionErrorCode:
		return DecodeStatusInvalidSection
	case errortypes.InvalidSegmentDefinitionErrorCode:
		return DecodeStatusInvalidSegment
	case errortypes.UnexpectedRangeSectionErrorCode:
		return DecodeStatusUnexpectedRange
	case errortypes.BadInputErrorCode:
		return DecodeStatusBadRequest
	default:
		return DecodeStatusErr
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend.
// The connection metrics fire once per TCP connection. The decode metrics fire once per
// consent string handled by the decode endpoint, whether or not it decoded.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordDecode(labels DecodeLabels)
	RecordDecodeTime(labels DecodeLabels, length time.Duration)
}
