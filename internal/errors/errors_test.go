package errors

import (
	"fmt"
	"net/http"
	"testing"

	"gonarrate/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"missing dataset", core.NewDataUnavailableError("ocarbon", nil), CodeDataUnavailable, http.StatusInternalServerError},
		{"missing column", core.NewColumnNotFoundError("ocarbon", "x"), CodeColumnNotFound, http.StatusUnprocessableEntity},
		{"too few points", core.NewInsufficientDataError("1 valid pair"), CodeInsufficientData, http.StatusUnprocessableEntity},
		{"empty", fmt.Errorf("mean: %w", core.ErrEmptyDataset), CodeEmptyDataset, http.StatusUnprocessableEntity},
		{"infinite cell", core.NewNonFiniteValueError("ocarbon", "avg_oc", 3), CodeNonFiniteValue, http.StatusUnprocessableEntity},
		{"other", fmt.Errorf("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "render failed")
			assert.Equal(t, tt.code, GetCode(wrapped))
			assert.Equal(t, tt.status, HTTPStatus(wrapped))
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestWrapKeepsAppErrorCode(t *testing.T) {
	base := NotFound("dataset soilgrid_corr")
	wrapped := Wrapf(base, "lookup %d", 1)

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.Equal(t, "lookup 1: dataset soilgrid_corr not found", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestForbiddenAndDatabaseCodes(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("admin routes disabled")))

	cause := fmt.Errorf("dial tcp: connection refused")
	db := Wrap(DatabaseError("connect failed", cause), "container setup")
	assert.Equal(t, CodeDatabaseError, GetCode(db))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(db))
	assert.ErrorIs(t, db, cause)
}
