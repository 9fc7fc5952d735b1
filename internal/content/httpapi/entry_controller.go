package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"fieldpress-server/internal/content/domain"
	"fieldpress-server/internal/content/httpapi/internal"
	"fieldpress-server/internal/content/usecases"
	"fieldpress-server/internal/infra/httpserver"
	schemausecases "fieldpress-server/internal/schema/usecases"
)

const (
	listEntriesErrMessage   = "failed to list entries"
	entryNotFoundErrMessage = "entry not found"
	createEntryErrMessage   = "failed to create entry"
	updateEntryErrMessage   = "failed to update entry"
	deleteEntryErrMessage   = "failed to delete entry"
	restoreEntryErrMessage  = "failed to restore entry"
	publishEntryErrMessage  = "failed to change entry status"
)

func NewEntryController(service usecases.EntryService) *EntryController {
	return &EntryController{
		service: service,
	}
}

var _ httpserver.Controller = &EntryController{}

type EntryController struct {
	service usecases.EntryService
}

func (c *EntryController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/projects/{project}/collections/{collection}/entries", c.listEntries())
	router.Handle("POST /v1/projects/{project}/collections/{collection}/entries", c.createEntry())
	router.Handle("GET /v1/projects/{project}/collections/{collection}/entries/{id}", c.getEntry())
	router.Handle("PUT /v1/projects/{project}/collections/{collection}/entries/{id}", c.replaceEntry())
	router.Handle("PATCH /v1/projects/{project}/collections/{collection}/entries/{id}", c.patchEntry())
	router.Handle("DELETE /v1/projects/{project}/collections/{collection}/entries/{id}", c.deleteEntry())
	router.Handle("POST /v1/projects/{project}/collections/{collection}/entries/{id}/publish", c.setStatus(domain.StatusPublished))
	router.Handle("POST /v1/projects/{project}/collections/{collection}/entries/{id}/unpublish", c.setStatus(domain.StatusDraft))
	router.Handle("POST /v1/projects/{project}/collections/{collection}/entries/{id}/restore", c.restoreEntry())
}

func (c *EntryController) listEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project := r.PathValue("project")
		collection := r.PathValue("collection")
		q := ParseListQuery(r)

		if q.CountOnly {
			count, err := c.service.CountEntries(r.Context(), project, collection, q)
			if err != nil {
				replyServiceError(w, err, listEntriesErrMessage)
				return
			}
			httpserver.ReplyJSONResponse(w, http.StatusOK, internal.EntryCountResponse{Count: count})
			return
		}

		result, err := c.service.ListEntries(r.Context(), project, collection, q)
		if err != nil {
			replyServiceError(w, err, listEntriesErrMessage)
			return
		}

		responses := make([]internal.EntryResponse, len(result.Entries))
		for i, entry := range result.Entries {
			responses[i] = internal.ToEntryResponse(entry)
		}

		if q.Pagination != nil {
			params := httpserver.PaginationParams{Page: q.Pagination.Page, Limit: q.Pagination.Limit}
			httpserver.ReplyWithPaginatedData(w, http.StatusOK, responses, int(result.Total), params)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.EntryListResponse{Data: responses})
	}
}

func (c *EntryController) getEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := usecases.SingleQuery{
			State:      parseState(r.URL.Query().Get("state")),
			Locale:     r.URL.Query().Get("locale"),
			Identifier: r.PathValue("id"),
		}

		entry, err := c.service.GetEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), q)
		if err != nil {
			replyServiceError(w, err, entryNotFoundErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToEntryResponse(entry))
	}
}

func (c *EntryController) createEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internal.EntryWriteRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Error("decoding create entry request", slog.String("error", err.Error()))
			http.Error(w, createEntryErrMessage, http.StatusBadRequest)
			return
		}

		opts := usecases.CreateOptions{
			Locale:             body.Locale,
			Status:             domain.Status(body.Status),
			TranslationGroupID: body.TranslationGroupID,
		}

		entry, err := c.service.CreateEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), body.Fields, opts)
		if err != nil {
			replyServiceError(w, err, createEntryErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, internal.ToEntryResponse(entry))
	}
}

func (c *EntryController) replaceEntry() http.HandlerFunc {
	return c.rewriteEntry(func(r *http.Request, fields map[string]any) (domain.Entry, error) {
		return c.service.ReplaceEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), r.PathValue("id"), fields)
	})
}

func (c *EntryController) patchEntry() http.HandlerFunc {
	return c.rewriteEntry(func(r *http.Request, fields map[string]any) (domain.Entry, error) {
		return c.service.PatchEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), r.PathValue("id"), fields)
	})
}

func (c *EntryController) rewriteEntry(fn func(r *http.Request, fields map[string]any) (domain.Entry, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body internal.EntryWriteRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			slog.Error("decoding entry update request", slog.String("error", err.Error()))
			http.Error(w, updateEntryErrMessage, http.StatusBadRequest)
			return
		}

		entry, err := fn(r, body.Fields)
		if err != nil {
			replyServiceError(w, err, updateEntryErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToEntryResponse(entry))
	}
}

func (c *EntryController) deleteEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hard := r.URL.Query().Get("hard") == "true"

		err := c.service.DeleteEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), r.PathValue("id"), hard)
		if err != nil {
			replyServiceError(w, err, deleteEntryErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusNoContent, nil)
	}
}

func (c *EntryController) restoreEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := c.service.RestoreEntry(r.Context(), r.PathValue("project"), r.PathValue("collection"), r.PathValue("id"))
		if err != nil {
			replyServiceError(w, err, restoreEntryErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusNoContent, nil)
	}
}

func (c *EntryController) setStatus(status domain.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := c.service.SetEntryStatus(r.Context(), r.PathValue("project"), r.PathValue("collection"), r.PathValue("id"), status)
		if err != nil {
			replyServiceError(w, err, publishEntryErrMessage)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusNoContent, nil)
	}
}

func replyServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, schemausecases.ErrProjectNotFound):
		http.Error(w, "project not found", http.StatusNotFound)
	case errors.Is(err, schemausecases.ErrCollectionNotFound):
		http.Error(w, "collection not found", http.StatusNotFound)
	case errors.Is(err, usecases.ErrEntryNotFound):
		http.Error(w, entryNotFoundErrMessage, http.StatusNotFound)
	default:
		slog.Error("handling entry request", slog.String("error", err.Error()))
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
