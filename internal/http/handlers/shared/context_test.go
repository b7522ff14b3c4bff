package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dujiao-next/promo/internal/http/response"

	"github.com/gin-gonic/gin"
)

func newAdminContext(value interface{}, set bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if set {
		c.Set(AdminIDKey, value)
	}
	return c, w
}

func TestAdminIDFromContext(t *testing.T) {
	for _, value := range []interface{}{uint(7), uint64(7), 7, int64(7), float64(7)} {
		c, _ := newAdminContext(value, true)
		id, ok := AdminIDFromContext(c)
		if !ok || id != 7 {
			t.Fatalf("admin id from %T want 7 got %d ok=%v", value, id, ok)
		}
	}
}

func TestAdminIDFromContextRejects(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		set   bool
		want  int
	}{
		{name: "missing", want: response.CodeUnauthorized},
		{name: "zero", value: uint(0), set: true, want: response.CodeUnauthorized},
		{name: "negative", value: -1, set: true, want: response.CodeBadRequest},
		{name: "fraction", value: 1.5, set: true, want: response.CodeBadRequest},
		{name: "string", value: "7", set: true, want: response.CodeInternal},
	}
	for _, tc := range cases {
		c, w := newAdminContext(tc.value, tc.set)
		if _, ok := AdminIDFromContext(c); ok {
			t.Fatalf("%s: admin id should be rejected", tc.name)
		}
		var resp response.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: unmarshal response failed: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status_code want %d got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}
