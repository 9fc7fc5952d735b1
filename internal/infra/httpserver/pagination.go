package httpserver

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type PaginationParams struct {
	Page  int
	Limit int
}

func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: defaultPage, Limit: defaultLimit}
}

// ExtractPaginationParams reads page/limit query parameters, falling back to
// defaults when absent or out of range.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := DefaultPaginationParams()

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			params.Page = page
		}
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 && limit <= maxLimit {
			params.Limit = limit
		}
	}

	return params
}

type PaginatedResponse struct {
	Data       any                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

type PaginationMetadata struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func ReplyWithPaginatedData(w http.ResponseWriter, statusCode int, data any, total int, params PaginationParams) {
	totalPages := total / params.Limit
	if total%params.Limit != 0 {
		totalPages++
	}

	ReplyJSONResponse(w, statusCode, PaginatedResponse{
		Data: data,
		Pagination: PaginationMetadata{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}
