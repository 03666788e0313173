package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "tourism/pkg/errors"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 20, 2},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	got := NewPagination(41, 2, 20)
	want := Pagination{Total: 41, Page: 2, Pages: 3, Limit: 20}
	if got != want {
		t.Errorf("NewPagination() = %+v, want %+v", got, want)
	}
}

func TestWriteError(t *testing.T) {
	t.Run("app error keeps status and message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if err := WriteError(rec, apperrors.Forbidden("not yours")); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"message":"not yours"`) || !strings.Contains(body, `"error":"not yours"`) {
			t.Errorf("unexpected body: %s", body)
		}
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if err := WriteError(rec, errString("mongo exploded")); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "mongo exploded") {
			t.Errorf("internal cause leaked: %s", rec.Body.String())
		}
	})
}

type errString string

func (e errString) Error() string { return string(e) }

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Name != "x" {
		t.Fatalf("DecodeJSON() = %v, name=%q", err, dst.Name)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Error("expected error for empty body")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Error("expected error for trailing data")
	}
}
