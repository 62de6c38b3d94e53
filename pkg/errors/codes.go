package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are stable strings so they
// can be emitted as metric labels and matched by API clients.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

// Common error codes shared by every module.
const (
	CodeOK                 ErrorCode = "OK"
	CodeUnknown            ErrorCode = "COMMON_000"
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeUnauthorized       ErrorCode = "COMMON_003"
	CodeForbidden          ErrorCode = "COMMON_004"
	CodeNotFound           ErrorCode = "COMMON_005"
	CodeConflict           ErrorCode = "COMMON_006"
	CodeRateLimit          ErrorCode = "COMMON_007"
	CodeServiceUnavailable ErrorCode = "COMMON_008"
	CodeTimeout            ErrorCode = "COMMON_009"
	CodeSerialization      ErrorCode = "COMMON_010"
	CodeDatabase           ErrorCode = "COMMON_011"
	CodeCache              ErrorCode = "COMMON_012"
	CodeNotImplemented     ErrorCode = "COMMON_013"
)

// Document module error codes.
const (
	CodeDocumentNotFound ErrorCode = "DOC_001"
	CodeSectionNotFound  ErrorCode = "DOC_002"
	CodeSectionEmpty     ErrorCode = "DOC_003"
)

// Guideline / ontology module error codes.
const (
	CodeGuidelineNotFound ErrorCode = "GDL_001"
	CodeOntologyQuery     ErrorCode = "GDL_002"
)

// Relevance engine error codes.
const (
	CodeJudgeUnavailable  ErrorCode = "REL_001"
	CodeJudgeMalformed    ErrorCode = "REL_002"
	CodeEmbeddingMissing  ErrorCode = "REL_003"
	CodeAssessmentFailed  ErrorCode = "REL_004"
	CodeAssessmentPersist ErrorCode = "REL_005"
)

// Citation pipeline error codes.
const (
	CodeProvisionInvalid     ErrorCode = "CIT_001"
	CodeValidatorUnavailable ErrorCode = "CIT_002"
	CodeValidatorMalformed   ErrorCode = "CIT_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status the API layer should
// return. Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam, CodeProvisionInvalid:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeDocumentNotFound, CodeSectionNotFound, CodeGuidelineNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeJudgeUnavailable, CodeValidatorUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
