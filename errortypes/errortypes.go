package errortypes

import "fmt"

// InsufficientLength should be used when a field or section declares more bits than
// the decoded consent string holds.
type InsufficientLength struct {
	Message string
}

func (err *InsufficientLength) Error() string {
	return err.Message
}

func (err *InsufficientLength) Code() int {
	return InsufficientLengthErrorCode
}

// UnsupportedVersion should be used when the version discriminator of a consent string
// does not match a known format.
type UnsupportedVersion struct {
	Message string
}

func (err *UnsupportedVersion) Error() string {
	return err.Message
}

func (err *UnsupportedVersion) Code() int {
	return UnsupportedVersionErrorCode
}

// InvalidURLSafeBase64 wraps the error returned by the base64 decoder when the consent string
// (or one of its segments) is not URL-safe base64 without padding.
type InvalidURLSafeBase64 struct {
	Cause error
}

func (err *InvalidURLSafeBase64) Error() string {
	return fmt.Sprintf("consent string is not valid url-safe base64: %v", err.Cause)
}

func (err *InvalidURLSafeBase64) Code() int {
	return InvalidURLSafeBase64ErrorCode
}

func (err *InvalidURLSafeBase64) Unwrap() error {
	return err.Cause
}

// InvalidAlphabetOffset should be used when a 6-bit character decodes outside of A-Z.
type InvalidAlphabetOffset struct {
	Message string
}

func (err *InvalidAlphabetOffset) Error() string {
	return err.Message
}

func (err *InvalidAlphabetOffset) Code() int {
	return InvalidAlphabetOffsetErrorCode
}

// InvalidSectionDefinition should be used when a section the format requires is missing
// or resolved to an unexpected shape.
type InvalidSectionDefinition struct {
	Message string
}

func (err *InvalidSectionDefinition) Error() string {
	return err.Message
}

func (err *InvalidSectionDefinition) Code() int {
	return InvalidSectionDefinitionErrorCode
}

// InvalidSegmentDefinition should be used when an optional TCF 2.0 segment carries an unknown
// segment type.
type InvalidSegmentDefinition struct {
	Message string
}

func (err *InvalidSegmentDefinition) Error() string {
	return err.Message
}

func (err *InvalidSegmentDefinition) Code() int {
	return InvalidSegmentDefinitionErrorCode
}

// UnexpectedRangeSection should be used when a vendor segment resolves to something other than
// a plain vendor set.
type UnexpectedRangeSection struct {
	Message string
}

func (err *UnexpectedRangeSection) Error() string {
	return err.Message
}

func (err *UnexpectedRangeSection) Code() int {
	return UnexpectedRangeSectionErrorCode
}

// BadInput should be used when a request to the decode service is unusable before any
// decoding starts, such as a missing or oversized consent string.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}
