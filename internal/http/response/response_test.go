package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status should always be 200, got=%d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body
}

func TestErrorAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeConflict, "conflict")

	body := decodeEnvelope(t, w)
	if int(body["status_code"].(float64)) != CodeConflict {
		t.Fatalf("unexpected status_code: %v", body["status_code"])
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok || data["request_id"] != "req-1" {
		t.Fatalf("request_id should be attached, got=%v", body["data"])
	}
}

func TestTooManyRequestsCarriesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	TooManyRequests(c, "slow down", 12)

	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	if int(data["retry_after"].(float64)) != 12 {
		t.Fatalf("retry_after want 12, got=%v", data["retry_after"])
	}
	if _, ok := data["request_id"]; ok {
		t.Fatalf("request_id should be absent without middleware")
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	if p.TotalPage != 3 {
		t.Fatalf("total page want 3, got=%d", p.TotalPage)
	}
	if NewPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should not divide")
	}
}
