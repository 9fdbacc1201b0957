package errortypes

// Defines numeric codes for the consent string decode failures.
const (
	UnknownErrorCode            = 999
	InsufficientLengthErrorCode = iota
	UnsupportedVersionErrorCode
	InvalidURLSafeBase64ErrorCode
	InvalidAlphabetOffsetErrorCode
	InvalidSectionDefinitionErrorCode
	InvalidSegmentDefinitionErrorCode
	UnexpectedRangeSectionErrorCode
	BadInputErrorCode
)

// Coder provides an error code.
type Coder interface {
	Code() int
}

// ReadCode returns the error code, or UnknownErrorCode if unavailable.
func ReadCode(err error) int {
	if e, ok := err.(Coder); ok {
		return e.Code()
	}
	return UnknownErrorCode
}
