package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilderDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().Payload(map[string]string{"status": "ok"}).Write(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestResponseBuilderStatusAndHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "value").
		Payload([]int{1, 2, 3}).
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Test"); got != "value" {
		t.Fatalf("X-Test = %q", got)
	}
}

func TestErrorResponseShape(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError("bad input").Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "bad input" {
		t.Fatalf("error message = %q", body.Error)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Fatalf("Allow = %q", got)
	}
}

func TestResponseBuilderRawBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Body([]byte("a,b,c\n")).
		Write(rec)

	if rec.Body.String() != "a,b,c\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
