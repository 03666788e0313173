package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "tourism/pkg/errors"
)

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func NewPagination(total int64, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Pages: TotalPages(total, limit),
		Limit: limit,
	}
}

// DecodeJSON decodes a request body into dst, rejecting unknown trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New("PAYLOAD_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge)
		}
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is empty")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	if dec.More() {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
