package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
)

func TestWriteBusiness(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing book answers 404",
			err:        httperr.ErrBusiness("book_not_found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "book_not_found",
		},
		{
			name:       "missing loan answers 404",
			err:        httperr.ErrBusiness("loan_not_found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "loan_not_found",
		},
		{
			name:       "foreign loan answers 403",
			err:        httperr.ErrBusiness("loan_access_denied"),
			wantStatus: http.StatusForbidden,
			wantCode:   "loan_access_denied",
		},
		{
			name:       "rule violations answer 400",
			err:        httperr.ErrBusiness("loan_limit_reached"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "loan_limit_reached",
		},
		{
			name:       "unexpected errors answer 500",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeBusiness(c, tt.err)

			require.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Code string `json:"error_code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tt.wantCode, body.Code)
		})
	}
}
