package workdrive

import (
	"strings"

	"github.com/google/uuid"
)

// splitPath resolves the creation addressing convention. "parentID/name"
// uses the final segment as the resource name and everything before it as
// the parent id; a bare parent id gets a generated unique placeholder name.
func splitPath(p string) (parentID, name string) {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		parentID, name = p[:i], p[i+1:]
		if name == "" {
			name = placeholderName()
		}
		return parentID, name
	}
	return p, placeholderName()
}

func placeholderName() string {
	return "upload-" + uuid.NewString()
}
