// Package wdapi decodes the JSON:API response envelopes used by the Zoho
// WorkDrive REST API and derives failure messages from its error envelope.
package wdapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Resource is a single JSON:API resource object.
type Resource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

// FileAttributes is the subset of WorkDrive file attributes the SDK reads.
// The full attribute payload stays available via Resource.AttributeMap.
type FileAttributes struct {
	Name           string `json:"name"`
	IsFolder       bool   `json:"is_folder"`
	IsPublished    bool   `json:"is_published"`
	ModifiedTimeMS int64  `json:"modified_time_in_millisecond"`
	MimeType       string `json:"mime_type"`
	ParentID       string `json:"parent_id"`
	Status         string `json:"status"`
	StorageInfo    struct {
		SizeBytes int64 `json:"size_in_bytes"`
	} `json:"storage_info"`
}

// FileAttributes decodes the typed attribute subset.
func (r *Resource) FileAttributes() (FileAttributes, error) {
	var attrs FileAttributes
	if len(r.Attributes) == 0 {
		return attrs, nil
	}
	if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
		return attrs, fmt.Errorf("wdapi: decode attributes for %q: %w", r.ID, err)
	}
	return attrs, nil
}

// AttributeMap decodes the raw attribute payload into a generic map. A nil
// map is returned when the resource carries no attributes.
func (r *Resource) AttributeMap() map[string]any {
	if len(r.Attributes) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.Attributes, &m); err != nil {
		return nil
	}
	return m
}

// DecodeResource unwraps a single-resource document ({"data": {...}}).
func DecodeResource(body []byte) (*Resource, error) {
	var doc struct {
		Data *Resource `json:"data"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &doc); err != nil {
		return nil, fmt.Errorf("wdapi: decode resource document: %w", err)
	}
	if doc.Data == nil {
		return nil, fmt.Errorf("wdapi: document has no data member")
	}
	return doc.Data, nil
}

// DecodeResourceList unwraps a multi-resource document ({"data": [...]}).
func DecodeResourceList(body []byte) ([]Resource, error) {
	var doc struct {
		Data []Resource `json:"data"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &doc); err != nil {
		return nil, fmt.Errorf("wdapi: decode resource list document: %w", err)
	}
	return doc.Data, nil
}

// FailureMessage turns a failed response into a human-readable message.
// A 409 always reads "File already exists" whatever the endpoint. Otherwise
// the first entry of the standard error envelope supplies "{id}: {title}",
// and anything undecodable collapses to "Unknown error".
func FailureMessage(statusCode int, body []byte) string {
	if statusCode == http.StatusConflict {
		return "File already exists"
	}
	var envelope struct {
		Errors []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return fmt.Sprintf("%s: %s", first.ID, first.Title)
	}
	return "Unknown error"
}
