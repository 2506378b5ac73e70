package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rogame/backend/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.KindNotFound, "missing"), http.StatusNotFound},
		{apperr.New(apperr.KindInvalidInput, "bad"), http.StatusBadRequest},
		{apperr.New(apperr.KindSerialization, "bad json"), http.StatusBadRequest},
		{apperr.New(apperr.KindPathTraversal, "escape"), http.StatusForbidden},
		{apperr.New(apperr.KindBackupError, "not imported"), http.StatusConflict},
		{apperr.New(apperr.KindConfigError, "no config"), http.StatusConflict},
		{apperr.New(apperr.KindIo, "disk"), http.StatusInternalServerError},
		{apperr.New(apperr.KindDatabase, "db"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "error %v", tt.err)
	}
}
