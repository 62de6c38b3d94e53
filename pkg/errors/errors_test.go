package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	e := New(CodeSectionNotFound, "section not found")
	assert.Equal(t, "[DOC_002] section not found", e.Error())

	withDetail := e.WithDetail("section_id=42")
	assert.Equal(t, "[DOC_002] section not found: section_id=42", withDetail.Error())
	// The original is untouched.
	assert.Equal(t, "[DOC_002] section not found", e.Error())
}

func TestNew_CapturesStack(t *testing.T) {
	t.Parallel()

	e := New(CodeInternal, "boom")
	assert.Contains(t, e.Stack, "errors_test.go")
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("nil error wraps to nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, Wrap(nil, CodeDatabase, "query failed"))
	})

	t.Run("preserves the cause chain", func(t *testing.T) {
		t.Parallel()
		cause := stderrors.New("connection reset")
		e := Wrap(cause, CodeDatabase, "query failed")
		assert.True(t, stderrors.Is(e, cause))
		assert.Equal(t, cause, stderrors.Unwrap(e))
	})

	t.Run("unknown code inherits the wrapped code", func(t *testing.T) {
		t.Parallel()
		inner := New(CodeJudgeUnavailable, "model down")
		e := Wrap(inner, CodeUnknown, "assessment failed")
		assert.Equal(t, CodeJudgeUnavailable, e.Code)
	})

	t.Run("explicit code wins", func(t *testing.T) {
		t.Parallel()
		inner := New(CodeJudgeUnavailable, "model down")
		e := Wrap(inner, CodeAssessmentFailed, "assessment failed")
		assert.Equal(t, CodeAssessmentFailed, e.Code)
		// The inner classification is still reachable through the chain.
		assert.True(t, IsCode(e, CodeJudgeUnavailable))
	})
}

func TestIsCode_TraversesWrapping(t *testing.T) {
	t.Parallel()

	inner := New(CodeTimeout, "deadline exceeded")
	middle := fmt.Errorf("calling judge: %w", inner)
	outer := Wrap(middle, CodeJudgeUnavailable, "judge call failed")

	assert.True(t, IsCode(outer, CodeJudgeUnavailable))
	assert.True(t, IsCode(outer, CodeTimeout))
	assert.False(t, IsCode(outer, CodeDatabase))
	assert.False(t, IsCode(nil, CodeTimeout))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(CodeDocumentNotFound, "no document")))
	assert.True(t, IsNotFound(New(CodeSectionNotFound, "no section")))
	assert.True(t, IsNotFound(New(CodeGuidelineNotFound, "no statement")))
	assert.True(t, IsNotFound(fmt.Errorf("loading: %w", NotFound("gone"))))
	assert.False(t, IsNotFound(New(CodeTimeout, "slow")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeCache, GetCode(New(CodeCache, "miss")))
	assert.Equal(t, CodeCache, GetCode(fmt.Errorf("wrapped: %w", New(CodeCache, "miss"))))
}

func TestNilReceiverSafety(t *testing.T) {
	t.Parallel()

	var e *AppError
	assert.Nil(t, e.WithDetail("detail"))
	assert.Nil(t, e.WithCause(stderrors.New("cause")))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeOK, http.StatusOK},
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeProvisionInvalid, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeSectionNotFound, http.StatusNotFound},
		{CodeJudgeUnavailable, http.StatusServiceUnavailable},
		{CodeValidatorUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeNotImplemented, http.StatusNotImplemented},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{ErrorCode("MADE_UP"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.code), "code %s", tc.code)
	}
}

func TestFactories(t *testing.T) {
	t.Parallel()

	require.Equal(t, CodeNotFound, NotFound("x").Code)
	require.Equal(t, CodeInvalidParam, InvalidParam("x").Code)
	require.Equal(t, CodeInternal, Internal("x").Code)
	require.Equal(t, CodeServiceUnavailable, Unavailable("x").Code)
	require.Equal(t, CodeTimeout, Timeout("x").Code)
}
