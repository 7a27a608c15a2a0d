package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/megano/internal/constants"
	"github.com/megano/internal/http/response"

	"github.com/gin-gonic/gin"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-3, 10, 1, 10},
		{4, 500, 4, 100},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("normalize(%d,%d) want %d,%d got %d,%d", tc.page, tc.size, tc.wantPage, tc.wantSize, page, size)
		}
	}
}

func TestPageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/orders?page=2&page_size=abc", nil)

	page, size := PageQuery(c)
	if page != 2 || size != 20 {
		t.Fatalf("want 2,20 got %d,%d", page, size)
	}
}

func TestRespondErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	c.Set(constants.ContextKeyRequestID, "req-9")

	RespondError(c, response.CodeNotFound, "error.order_not_found", errors.New("record not found"))

	var resp struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if w.Code != http.StatusOK || resp.StatusCode != response.CodeNotFound {
		t.Fatalf("unexpected status http=%d code=%d", w.Code, resp.StatusCode)
	}
	if resp.Msg == "" || resp.Data["request_id"] != "req-9" {
		t.Fatalf("expected localized message and request id, got %+v", resp)
	}
}

func TestUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(constants.ContextKeyUserID, uint(7))
	if id, ok := UserID(c); !ok || id != 7 {
		t.Fatalf("want 7 got %d ok=%v", id, ok)
	}

	anonymous, _ := gin.CreateTestContext(httptest.NewRecorder())
	anonymous.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if id, ok := OptionalUserID(anonymous); !ok || id != 0 {
		t.Fatalf("anonymous should pass with 0, got %d ok=%v", id, ok)
	}
	if _, ok := UserID(anonymous); ok {
		t.Fatalf("missing user id should fail")
	}

	w := httptest.NewRecorder()
	broken, _ := gin.CreateTestContext(w)
	broken.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	broken.Set(constants.ContextKeyUserID, "7")
	if _, ok := UserID(broken); ok {
		t.Fatalf("non-uint user id should fail")
	}
	if !strings.Contains(w.Body.String(), `"status_code":400`) {
		t.Fatalf("expected 400 envelope, got %s", w.Body.String())
	}
}
