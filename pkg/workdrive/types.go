package workdrive

// Visibility mirrors the remote "published" state of a resource.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Attributes is implemented by the per-child records yielded by ListContents.
type Attributes interface {
	// ResourceID returns the remote resource id.
	ResourceID() string
	// IsDir reports whether the record describes a folder.
	IsDir() bool
}

// FileAttributes describes a file resource. Zero values mean the remote
// service did not report the field.
type FileAttributes struct {
	ID                 string
	Size               int64
	Visibility         Visibility
	LastModifiedMillis int64
	MimeType           string
	Extra              map[string]any
}

func (a FileAttributes) ResourceID() string { return a.ID }
func (a FileAttributes) IsDir() bool        { return false }

// DirectoryAttributes describes a folder resource.
type DirectoryAttributes struct {
	ID                 string
	Visibility         Visibility
	LastModifiedMillis int64
	Extra              map[string]any
}

func (a DirectoryAttributes) ResourceID() string { return a.ID }
func (a DirectoryAttributes) IsDir() bool        { return true }

// WriteOptions controls Write and WriteStream.
type WriteOptions struct {
	// Filename overrides the name derived from the path.
	Filename string
	// Overwrite sets the remote override-name-exist flag. A nil pointer
	// omits the field from the upload entirely.
	Overwrite *bool
}

// DirectoryOptions reserves room for folder-creation settings; the remote
// API currently takes none beyond name and parent.
type DirectoryOptions struct{}
