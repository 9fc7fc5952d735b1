package internal

import (
	"time"

	"fieldpress-server/internal/content/domain"
)

type EntryWriteRequest struct {
	Locale             string         `json:"locale"`
	Status             string         `json:"status"`
	TranslationGroupID string         `json:"translation_group_id"`
	Fields             map[string]any `json:"fields"`
}

type EntryResponse struct {
	ID                 int64          `json:"id"`
	UUID               string         `json:"uuid"`
	Locale             string         `json:"locale"`
	Status             string         `json:"status"`
	TranslationGroupID *string        `json:"translation_group_id,omitempty"`
	Fields             map[string]any `json:"fields"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type EntryListResponse struct {
	Data []EntryResponse `json:"data"`
}

type EntryCountResponse struct {
	Count int64 `json:"count"`
}

func ToEntryResponse(entry domain.Entry) EntryResponse {
	fields := entry.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	return EntryResponse{
		ID:                 entry.ID,
		UUID:               entry.UUID,
		Locale:             entry.Locale,
		Status:             string(entry.Status),
		TranslationGroupID: entry.TranslationGroupID,
		Fields:             fields,
		CreatedAt:          entry.CreatedAt,
		UpdatedAt:          entry.UpdatedAt,
	}
}
