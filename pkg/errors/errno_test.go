package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		sequence int
		want     int
	}{
		{"common request", ServiceCommon, CategoryRequest, 1, 1001},
		{"knowledge parse", ServiceKnowledge, CategoryRequest, 1, 2001001},
		{"knowledge store", ServiceKnowledge, CategoryStore, 0, 2008000},
		{"success", ServiceCommon, CategorySuccess, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeCode(tt.service, tt.category, tt.sequence))
		})
	}
}

func TestParseCode(t *testing.T) {
	service, category, sequence := ParseCode(2010001)
	assert.Equal(t, ServiceKnowledge, service)
	assert.Equal(t, CategoryNetwork, category)
	assert.Equal(t, 1, sequence)
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := ErrVectorStore.WithCause(cause)

	assert.Equal(t, ErrVectorStore.Code, err.Code)
	assert.ErrorIs(t, err, ErrVectorStore)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "connection reset")

	// WithCause must not mutate the registered error.
	assert.Nil(t, errors.Unwrap(ErrVectorStore))
}

func TestErrnoWithMessage(t *testing.T) {
	err := ErrInvalidParam.WithMessage("question is required")
	assert.Equal(t, ErrInvalidParam.Code, err.Code)
	assert.Equal(t, "question is required", err.MessageEN)
	assert.Equal(t, "Invalid parameter", ErrInvalidParam.MessageEN)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	e := FromError(ErrDocumentParse)
	assert.Same(t, ErrDocumentParse, e)

	plain := fmt.Errorf("boom")
	wrapped := FromError(plain)
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.Equal(t, plain, errors.Unwrap(wrapped))
}

func TestHTTPAndGRPCMapping(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, ErrDocumentParse.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ErrEmbeddingBackend.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ErrGenerationBackend.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrVectorStore.HTTPStatus())
	assert.Equal(t, codes.Unavailable, ErrEmbeddingBackend.GRPCStatus())
	assert.Equal(t, codes.InvalidArgument, ErrDocumentParse.GRPCStatus())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	dup := &Errno{
		Code:      ErrInternal.Code,
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "dup",
	}
	assert.Panics(t, func() { Register(dup) })
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrDocType.Code)
	require.True(t, ok)
	assert.Same(t, ErrDocType, e)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}
