package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are grouped by module prefix: COMMON (cross-cutting), QRY (query
// understanding), DEC (decision synthesis), EVD (evidence mapping),
// RET (passage retrieval), CFG (configuration).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_003"
	ErrCodeTimeout       ErrorCode = "COMMON_004"
	ErrCodeValidation    ErrorCode = "COMMON_005"
	ErrCodeSerialization ErrorCode = "COMMON_006"
	ErrCodeUnknown       ErrorCode = "COMMON_000"
	CodeOK               ErrorCode = "OK"
)

// Query-understanding error codes.
const (
	ErrCodeQueryEmpty       ErrorCode = "QRY_001"
	ErrCodeQueryNotText     ErrorCode = "QRY_002"
	ErrCodeQueryTooLong     ErrorCode = "QRY_003"
	ErrCodeUnknownAttribute ErrorCode = "QRY_004"
)

// Decision-engine error codes.
const (
	ErrCodeDecisionNilInput     ErrorCode = "DEC_001"
	ErrCodeDecisionNoChains     ErrorCode = "DEC_002"
	ErrCodeDecisionSynthesis    ErrorCode = "DEC_003"
	ErrCodeDecisionUnknownChain ErrorCode = "DEC_004"
)

// Evidence-mapping error codes.
const (
	ErrCodeEvidenceNoPassages ErrorCode = "EVD_001"
	ErrCodeEvidenceMapping    ErrorCode = "EVD_002"
)

// Retrieval error codes.
const (
	ErrCodeRetrievalUnavailable ErrorCode = "RET_001"
	ErrCodeRetrievalQuery       ErrorCode = "RET_002"
	ErrCodeRetrievalParse       ErrorCode = "RET_003"
)

// Configuration error codes. These are fatal at process start and never
// recoverable per-query.
const (
	ErrCodeConfigRead       ErrorCode = "CFG_001"
	ErrCodeConfigInvalid    ErrorCode = "CFG_002"
	ErrCodeDomainTableEmpty ErrorCode = "CFG_003"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeNotFound:      "resource not found",
	ErrCodeTimeout:       "operation timed out",
	ErrCodeValidation:    "validation failed",
	ErrCodeSerialization: "serialization failed",

	ErrCodeQueryEmpty:       "query text is empty",
	ErrCodeQueryNotText:     "query is not valid text",
	ErrCodeQueryTooLong:     "query exceeds maximum length",
	ErrCodeUnknownAttribute: "unknown attribute kind",

	ErrCodeDecisionNilInput:     "decision input is nil",
	ErrCodeDecisionNoChains:     "no reasoning chains executed",
	ErrCodeDecisionSynthesis:    "decision synthesis failed",
	ErrCodeDecisionUnknownChain: "unknown reasoning chain",

	ErrCodeEvidenceNoPassages: "no passages supplied for evidence mapping",
	ErrCodeEvidenceMapping:    "evidence mapping failed",

	ErrCodeRetrievalUnavailable: "passage retrieval backend unavailable",
	ErrCodeRetrievalQuery:       "passage retrieval query failed",
	ErrCodeRetrievalParse:       "failed to parse retrieval response",

	ErrCodeConfigRead:       "failed to read configuration",
	ErrCodeConfigInvalid:    "configuration is invalid",
	ErrCodeDomainTableEmpty: "domain table is empty or malformed",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
