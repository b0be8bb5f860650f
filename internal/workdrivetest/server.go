// Package workdrivetest implements an in-memory fake of the WorkDrive REST
// API for tests and local sandboxing. It covers the endpoint surface the SDK
// uses: metadata, children listing, permissions, trash, move, copy, folder
// creation, multipart upload and binary download. Every request is recorded
// in a journal so tests can assert exact call sequences and payloads.
package workdrivetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Request is one journal entry.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Resource is a stored file or folder.
type Resource struct {
	ID         string
	Name       string
	ParentID   string
	Folder     bool
	Published  bool
	MimeType   string
	ModifiedMS int64
	Status     string
	Data       []byte
}

// Permission is a stored share-permission record.
type Permission struct {
	ID         string
	ResourceID string
	SharedType string
	RoleID     int
}

// Server holds the fake state. All methods are safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	files     map[string]*Resource
	perms     map[string]*Permission
	permOrder []string
	journal   []Request
	nextID    int
	token     string
}

// New constructs an empty Server.
func New() *Server {
	return &Server{
		files: make(map[string]*Resource),
		perms: make(map[string]*Permission),
	}
}

// SetToken makes the server reject requests whose bearer token differs.
// An empty token accepts anything.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Requests returns a copy of the journal.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.journal))
	copy(out, s.journal)
	return out
}

// ResetJournal clears the journal without touching stored resources.
func (s *Server) ResetJournal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = nil
}

// AddFolder seeds a folder and returns its id.
func (s *Server) AddFolder(parentID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := &Resource{
		ID:         s.newID("res"),
		Name:       name,
		ParentID:   parentID,
		Folder:     true,
		ModifiedMS: time.Now().UnixMilli(),
	}
	s.files[res.ID] = res
	return res.ID
}

// AddFile seeds a file and returns its id.
func (s *Server) AddFile(parentID, name string, data []byte, mimeType string, modifiedMS int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if modifiedMS == 0 {
		modifiedMS = time.Now().UnixMilli()
	}
	res := &Resource{
		ID:         s.newID("res"),
		Name:       name,
		ParentID:   parentID,
		MimeType:   mimeType,
		ModifiedMS: modifiedMS,
		Data:       append([]byte(nil), data...),
	}
	s.files[res.ID] = res
	return res.ID
}

// AddPermission seeds a share permission and returns its id.
func (s *Server) AddPermission(resourceID, sharedType string, roleID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	perm := &Permission{
		ID:         s.newID("perm"),
		ResourceID: resourceID,
		SharedType: sharedType,
		RoleID:     roleID,
	}
	s.perms[perm.ID] = perm
	s.permOrder = append(s.permOrder, perm.ID)
	if sharedType == "publish" {
		if res, ok := s.files[resourceID]; ok {
			res.Published = true
		}
	}
	return perm.ID
}

// Resource returns a copy of the stored resource.
func (s *Server) Resource(id string) (Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.files[id]
	if !ok {
		return Resource{}, false
	}
	return *res, true
}

// Permissions returns the permissions attached to resourceID in insertion order.
func (s *Server) Permissions(resourceID string) []Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Permission
	for _, id := range s.permOrder {
		if perm, ok := s.perms[id]; ok && perm.ResourceID == resourceID {
			out = append(out, *perm)
		}
	}
	return out
}

// Handler returns the HTTP handler serving both the API and download routes,
// so tests can point the SDK's two base URLs at a single listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.authenticate)

	r.Get("/api/v1/files/{fileID}", s.handleMetadata)
	r.Patch("/api/v1/files/{fileID}", s.handlePatchFile)
	r.Get("/api/v1/files/{fileID}/files", s.handleChildren)
	r.Get("/api/v1/files/{fileID}/permissions", s.handleListPermissions)
	r.Post("/api/v1/files/{fileID}/copy", s.handleCopy)
	r.Post("/api/v1/files", s.handleCreateFolder)
	r.Post("/api/v1/permissions", s.handleCreatePermission)
	r.Delete("/api/v1/permissions/{permID}", s.handleDeletePermission)
	r.Post("/api/v1/upload", s.handleUpload)
	r.Get("/v1/workdrive/download/{fileID}", s.handleDownload)

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.journal = append(s.journal, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "R401", "Invalid OAuth token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.files[chi.URLParam(r, "fileID")]
	if !ok {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resourceJSON(res)})
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parentID := chi.URLParam(r, "fileID")
	if _, ok := s.files[parentID]; !ok {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}
	children := make([]map[string]any, 0)
	for _, id := range s.sortedFileIDs() {
		res := s.files[id]
		if res.ParentID == parentID && res.Status != trashedStatus {
			children = append(children, resourceJSON(res))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": children})
}

func (s *Server) handlePatchFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.files[chi.URLParam(r, "fileID")]
	if !ok {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}

	var payload struct {
		Attributes struct {
			Status   *string `json:"status"`
			ParentID *string `json:"parent_id"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Malformed request body")
		return
	}

	if payload.Attributes.Status != nil {
		res.Status = *payload.Attributes.Status
	}
	if payload.Attributes.ParentID != nil {
		if _, ok := s.files[*payload.Attributes.ParentID]; !ok {
			writeError(w, http.StatusNotFound, "F7003", "Destination not found")
			return
		}
		res.ParentID = *payload.Attributes.ParentID
	}
	res.ModifiedMS = time.Now().UnixMilli()
	writeJSON(w, http.StatusOK, map[string]any{"data": resourceJSON(res)})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload struct {
		Attributes struct {
			Name     string `json:"name"`
			ParentID string `json:"parent_id"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Malformed request body")
		return
	}
	if _, ok := s.files[payload.Attributes.ParentID]; !ok {
		writeError(w, http.StatusNotFound, "F7003", "Parent not found")
		return
	}
	if s.nameTaken(payload.Attributes.ParentID, payload.Attributes.Name) {
		writeError(w, http.StatusConflict, "F6002", "Folder with the same name exists")
		return
	}

	res := &Resource{
		ID:         s.newID("res"),
		Name:       payload.Attributes.Name,
		ParentID:   payload.Attributes.ParentID,
		Folder:     true,
		ModifiedMS: time.Now().UnixMilli(),
	}
	s.files[res.ID] = res
	writeJSON(w, http.StatusCreated, map[string]any{"data": resourceJSON(res)})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	destID := chi.URLParam(r, "fileID")
	if _, ok := s.files[destID]; !ok {
		writeError(w, http.StatusNotFound, "F7003", "Destination not found")
		return
	}

	var payload struct {
		Attributes struct {
			ResourceID string `json:"resource_id"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Malformed request body")
		return
	}
	src, ok := s.files[payload.Attributes.ResourceID]
	if !ok {
		writeError(w, http.StatusNotFound, "F7003", "Source not found")
		return
	}

	dup := *src
	dup.ID = s.newID("res")
	dup.ParentID = destID
	dup.Data = append([]byte(nil), src.Data...)
	dup.ModifiedMS = time.Now().UnixMilli()
	s.files[dup.ID] = &dup
	writeJSON(w, http.StatusCreated, map[string]any{"data": []any{resourceJSON(&dup)}})
}

func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resourceID := chi.URLParam(r, "fileID")
	if _, ok := s.files[resourceID]; !ok {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}

	perms := make([]map[string]any, 0)
	for _, id := range s.permOrder {
		perm, ok := s.perms[id]
		if !ok || perm.ResourceID != resourceID {
			continue
		}
		perms = append(perms, permissionJSON(perm))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": perms})
}

func (s *Server) handleCreatePermission(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload struct {
		Data struct {
			Attributes struct {
				ResourceID string `json:"resource_id"`
				SharedType string `json:"shared_type"`
				RoleID     int    `json:"role_id"`
			} `json:"attributes"`
			Type string `json:"type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Malformed request body")
		return
	}

	attrs := payload.Data.Attributes
	res, ok := s.files[attrs.ResourceID]
	if !ok {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}

	perm := &Permission{
		ID:         s.newID("perm"),
		ResourceID: attrs.ResourceID,
		SharedType: attrs.SharedType,
		RoleID:     attrs.RoleID,
	}
	s.perms[perm.ID] = perm
	s.permOrder = append(s.permOrder, perm.ID)
	if perm.SharedType == "publish" {
		res.Published = true
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": permissionJSON(perm)})
}

func (s *Server) handleDeletePermission(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	permID := chi.URLParam(r, "permID")
	perm, ok := s.perms[permID]
	if !ok {
		writeError(w, http.StatusNotFound, "P404", "Permission not found")
		return
	}
	delete(s.perms, permID)

	if perm.SharedType == "publish" {
		if res, ok := s.files[perm.ResourceID]; ok {
			res.Published = s.hasPublishPermission(perm.ResourceID)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Malformed multipart body")
		return
	}
	file, _, err := r.FormFile("content")
	if err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Missing content part")
		return
	}
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "F400", "Unreadable content part")
		return
	}

	parentID := r.FormValue("parent_id")
	filename := r.FormValue("filename")
	override := r.FormValue("override-name-exist")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[parentID]; !ok {
		writeError(w, http.StatusNotFound, "F7003", "Parent not found")
		return
	}
	if existing := s.childByName(parentID, filename); existing != nil {
		if !strings.EqualFold(override, "true") {
			writeError(w, http.StatusConflict, "F6002", "File with the same name exists")
			return
		}
		existing.Data = data
		existing.ModifiedMS = time.Now().UnixMilli()
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{resourceJSON(existing)}})
		return
	}

	res := &Resource{
		ID:         s.newID("res"),
		Name:       filename,
		ParentID:   parentID,
		ModifiedMS: time.Now().UnixMilli(),
		Data:       data,
	}
	s.files[res.ID] = res
	writeJSON(w, http.StatusOK, map[string]any{"data": []any{resourceJSON(res)}})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.files[chi.URLParam(r, "fileID")]
	if !ok || res.Folder {
		writeError(w, http.StatusNotFound, "F7003", "Resource not found")
		return
	}
	if res.MimeType != "" {
		w.Header().Set("Content-Type", res.MimeType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

const trashedStatus = "51"

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%04d", prefix, s.nextID)
}

func (s *Server) nameTaken(parentID, name string) bool {
	return s.childByName(parentID, name) != nil
}

func (s *Server) childByName(parentID, name string) *Resource {
	for _, res := range s.files {
		if res.ParentID == parentID && res.Name == name && res.Status != trashedStatus {
			return res
		}
	}
	return nil
}

func (s *Server) hasPublishPermission(resourceID string) bool {
	for _, perm := range s.perms {
		if perm.ResourceID == resourceID && perm.SharedType == "publish" {
			return true
		}
	}
	return false
}

// sortedFileIDs keeps listings deterministic; ids embed a growing counter.
func (s *Server) sortedFileIDs() []string {
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func resourceJSON(res *Resource) map[string]any {
	attrs := map[string]any{
		"name":                         res.Name,
		"is_folder":                    res.Folder,
		"is_published":                 res.Published,
		"modified_time_in_millisecond": res.ModifiedMS,
		"parent_id":                    res.ParentID,
	}
	if res.MimeType != "" {
		attrs["mime_type"] = res.MimeType
	}
	if res.Status != "" {
		attrs["status"] = res.Status
	}
	if !res.Folder {
		attrs["storage_info"] = map[string]any{"size_in_bytes": len(res.Data)}
	}
	return map[string]any{
		"id":         res.ID,
		"type":       "files",
		"attributes": attrs,
	}
}

func permissionJSON(perm *Permission) map[string]any {
	return map[string]any{
		"id":   perm.ID,
		"type": "permissions",
		"attributes": map[string]any{
			"resource_id": perm.ResourceID,
			"shared_type": perm.SharedType,
			"role_id":     perm.RoleID,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, id, title string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{"id": id, "title": title}},
	})
}
