package workdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/driveport/workdrive_sdk_go/internal/httpx"
	"github.com/driveport/workdrive_sdk_go/internal/wdapi"
)

// Exists reports whether a metadata fetch for path answers 200. It never
// returns an error; any failure reads as "does not exist".
func (c *Client) Exists(ctx context.Context, path string) bool {
	resp, err := c.do(ctx, c.api, verbGet, filePath(path), nil, "")
	if err != nil {
		return false
	}
	httpx.DrainAndClose(resp.Body)
	return resp.StatusCode == http.StatusOK
}

// DirectoryExists delegates to Exists; the remote service does not
// distinguish file from folder existence.
func (c *Client) DirectoryExists(ctx context.Context, path string) bool {
	return c.Exists(ctx, path)
}

// Write uploads content as a new file. The path is either a bare parent id
// (the file gets a generated placeholder name) or "parentID/name".
func (c *Client) Write(ctx context.Context, path string, content []byte, opts *WriteOptions) error {
	const op = "write"

	if int64(len(content)) > MaxUploadBytes {
		return &Error{Kind: KindWrite, Op: op, Path: path, Message: "content exceeds the maximum upload size of 250 MiB"}
	}

	parentID, filename := splitPath(path)
	if opts != nil && opts.Filename != "" {
		filename = opts.Filename
	}

	body, contentType, err := buildUploadBody(content, parentID, filename, opts)
	if err != nil {
		return &Error{Kind: KindWrite, Op: op, Path: path, Message: "build upload request", Cause: err}
	}

	resp, err := c.do(ctx, c.api, verbPost, "/api/v1/upload", body, contentType)
	if err != nil {
		return failure(KindWrite, op, path, err)
	}
	respBody, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindWrite, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusFailure(KindWrite, op, path, resp.StatusCode, respBody)
	}
	return nil
}

// WriteStream consumes the whole stream into memory and uploads it with
// Write semantics; the size check applies to the buffered content.
func (c *Client) WriteStream(ctx context.Context, path string, r io.Reader, opts *WriteOptions) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return &Error{Kind: KindWrite, Op: "write", Path: path, Message: "read content stream", Cause: err}
	}
	return c.Write(ctx, path, content, opts)
}

// Read fetches the binary content of path from the download host.
func (c *Client) Read(ctx context.Context, path string) ([]byte, error) {
	const op = "read"

	resp, err := c.do(ctx, c.download, verbGet, "/v1/workdrive/download/"+url.PathEscape(path), nil, "")
	if err != nil {
		return nil, failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusFailure(KindRead, op, path, resp.StatusCode, body)
	}
	return body, nil
}

// ReadStream returns the content of path as a byte stream. The content is
// fetched in full first; the stream is a buffered wrapper over Read.
func (c *Client) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := c.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete moves path to the trash.
func (c *Client) Delete(ctx context.Context, path string) error {
	const op = "delete"

	payload := map[string]any{
		"attributes": map[string]any{"status": statusTrashed},
	}
	resp, err := c.doJSON(ctx, verbPatch, filePath(path), payload)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusFailure(KindRead, op, path, resp.StatusCode, body)
	}
	return nil
}

// DeleteDirectory delegates to Delete.
func (c *Client) DeleteDirectory(ctx context.Context, path string) error {
	return c.Delete(ctx, path)
}

// CreateDirectory creates a folder. The path follows the same splitting
// convention as Write.
func (c *Client) CreateDirectory(ctx context.Context, path string, _ *DirectoryOptions) error {
	const op = "create directory"

	parentID, name := splitPath(path)
	payload := map[string]any{
		"attributes": map[string]any{
			"name":      name,
			"parent_id": parentID,
		},
	}
	resp, err := c.doJSON(ctx, verbPost, "/api/v1/files", payload)
	if err != nil {
		return failure(KindWrite, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindWrite, op, path, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return statusFailure(KindWrite, op, path, resp.StatusCode, body)
	}
	return nil
}

// SetVisibility publishes or unpublishes path. Going private revokes every
// share permission on the resource, one delete call per permission, in the
// order the listing returned them.
func (c *Client) SetVisibility(ctx context.Context, path string, v Visibility) error {
	switch v {
	case VisibilityPrivate:
		return c.revokePermissions(ctx, path)
	case VisibilityPublic:
		return c.grantPublicView(ctx, path)
	default:
		return &Error{Kind: KindRead, Op: "set visibility", Path: path, Message: fmt.Sprintf("unsupported visibility %q", v)}
	}
}

func (c *Client) grantPublicView(ctx context.Context, path string) error {
	const op = "set visibility"

	payload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"resource_id": path,
				"shared_type": "publish",
				"role_id":     roleIDViewer,
			},
			"type": "permissions",
		},
	}
	resp, err := c.doJSON(ctx, verbPost, "/api/v1/permissions", payload)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return statusFailure(KindRead, op, path, resp.StatusCode, body)
	}
	return nil
}

func (c *Client) revokePermissions(ctx context.Context, path string) error {
	const op = "set visibility"

	resp, err := c.do(ctx, c.api, verbGet, filePath(path)+"/permissions", nil, "")
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusFailure(KindRead, op, path, resp.StatusCode, body)
	}

	perms, err := wdapi.DecodeResourceList(body)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	for _, perm := range perms {
		if err := c.revokePermission(ctx, op, path, perm.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) revokePermission(ctx context.Context, op, path, permissionID string) error {
	resp, err := c.do(ctx, c.api, verbDelete, "/api/v1/permissions/"+url.PathEscape(permissionID), nil, "")
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusFailure(KindRead, op, path, resp.StatusCode, body)
	}
	return nil
}

// Visibility reports whether path is published.
func (c *Client) Visibility(ctx context.Context, path string) (Visibility, error) {
	attrs, err := c.fetchMetadata(ctx, "visibility", path)
	if err != nil {
		return "", err
	}
	if attrs.IsPublished {
		return VisibilityPublic, nil
	}
	return VisibilityPrivate, nil
}

// MimeType detects the MIME type from the resource name, falling back to
// the remote-reported type.
func (c *Client) MimeType(ctx context.Context, path string) (string, error) {
	attrs, err := c.fetchMetadata(ctx, "mime type", path)
	if err != nil {
		return "", err
	}
	if t := c.detect.Detect(attrs.Name); t != "" {
		return t, nil
	}
	return attrs.MimeType, nil
}

// LastModified returns the modification timestamp of path in milliseconds.
func (c *Client) LastModified(ctx context.Context, path string) (int64, error) {
	attrs, err := c.fetchMetadata(ctx, "last modified", path)
	if err != nil {
		return 0, err
	}
	return attrs.ModifiedTimeMS, nil
}

// FileSize returns the byte size of path.
func (c *Client) FileSize(ctx context.Context, path string) (int64, error) {
	attrs, err := c.fetchMetadata(ctx, "file size", path)
	if err != nil {
		return 0, err
	}
	return attrs.StorageInfo.SizeBytes, nil
}

// ListContents fetches the children of path and returns an iterator over
// one attributes record per child. The deep flag is accepted for interface
// parity only; listing never recurses into subfolders.
func (c *Client) ListContents(ctx context.Context, path string, deep bool) (*ContentIterator, error) {
	const op = "list contents"
	_ = deep

	resp, err := c.do(ctx, c.api, verbGet, filePath(path)+"/files", nil, "")
	if err != nil {
		return nil, failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusFailure(KindRead, op, path, resp.StatusCode, body)
	}

	children, err := wdapi.DecodeResourceList(body)
	if err != nil {
		return nil, failure(KindRead, op, path, err)
	}

	items := make([]Attributes, 0, len(children))
	for i := range children {
		child := &children[i]
		attrs, err := child.FileAttributes()
		if err != nil {
			return nil, failure(KindRead, op, path, err)
		}
		items = append(items, c.childAttributes(child, attrs))
	}
	return &ContentIterator{items: items}, nil
}

func (c *Client) childAttributes(res *wdapi.Resource, attrs wdapi.FileAttributes) Attributes {
	visibility := VisibilityPrivate
	if attrs.IsPublished {
		visibility = VisibilityPublic
	}
	if attrs.IsFolder {
		return DirectoryAttributes{
			ID:                 res.ID,
			Visibility:         visibility,
			LastModifiedMillis: attrs.ModifiedTimeMS,
			Extra:              res.AttributeMap(),
		}
	}
	mimeType := c.detect.Detect(attrs.Name)
	if mimeType == "" {
		mimeType = attrs.MimeType
	}
	return FileAttributes{
		ID:                 res.ID,
		Size:               attrs.StorageInfo.SizeBytes,
		Visibility:         visibility,
		LastModifiedMillis: attrs.ModifiedTimeMS,
		MimeType:           mimeType,
		Extra:              res.AttributeMap(),
	}
}

// Move reparents source under destination.
func (c *Client) Move(ctx context.Context, source, destination string) error {
	const op = "move"

	payload := map[string]any{
		"attributes": map[string]any{"parent_id": destination},
	}
	resp, err := c.doJSON(ctx, verbPatch, filePath(source), payload)
	if err != nil {
		return failure(KindRead, op, source, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, source, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusFailure(KindRead, op, source, resp.StatusCode, body)
	}
	return nil
}

// Copy copies source into destination.
func (c *Client) Copy(ctx context.Context, source, destination string) error {
	const op = "copy"

	payload := map[string]any{
		"attributes": map[string]any{"resource_id": source},
	}
	resp, err := c.doJSON(ctx, verbPost, filePath(destination)+"/copy", payload)
	if err != nil {
		return failure(KindRead, op, source, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failure(KindRead, op, source, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return statusFailure(KindRead, op, source, resp.StatusCode, body)
	}
	return nil
}

// fetchMetadata is the shared metadata fetch behind the attribute getters.
func (c *Client) fetchMetadata(ctx context.Context, op, path string) (wdapi.FileAttributes, error) {
	var zero wdapi.FileAttributes

	resp, err := c.do(ctx, c.api, verbGet, filePath(path), nil, "")
	if err != nil {
		return zero, failure(KindRead, op, path, err)
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return zero, failure(KindRead, op, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return zero, statusFailure(KindRead, op, path, resp.StatusCode, body)
	}

	res, err := wdapi.DecodeResource(body)
	if err != nil {
		return zero, failure(KindRead, op, path, err)
	}
	return res.FileAttributes()
}

func buildUploadBody(content []byte, parentID, filename string, opts *WriteOptions) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("content", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("parent_id", parentID); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("filename", filename); err != nil {
		return nil, "", err
	}
	if opts != nil && opts.Overwrite != nil {
		if err := mw.WriteField("override-name-exist", strconv.FormatBool(*opts.Overwrite)); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}
