package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelistcl/marketplace-api/internal/handler"
)

// Approval instantiates the plan, so the reviewer must name the sala
// it will run in.  The check fires before any repository call.
func TestApproveRequiresSala(t *testing.T) {
	h := &handler.AdminHandler{}
	e := echo.New()
	cases := []struct {
		name string
		fn   func(echo.Context) error
		body string
	}{
		{"internal missing", h.ApproveApplication, `{"comment":"lgtm"}`},
		{"internal blank", h.ApproveApplication, `{"sala":"   "}`},
		{"public missing", h.ApprovePublicApplication, `{"comment":"lgtm"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues("7")
			c.Set("user_id", uint64(1))

			require.NoError(t, tc.fn(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "sala", body["field"])
		})
	}
}
