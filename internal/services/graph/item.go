package graph

import "strings"

// driveRootPrefix is what the API prepends to parentReference paths.
const driveRootPrefix = "/drive/root:"

// FolderFacet is present on items that are folders.
type FolderFacet struct {
	ChildCount int `json:"childCount,omitempty"`
}

// FileFacet is present on items that are files.
type FileFacet struct {
	MimeType string `json:"mimeType,omitempty"`
}

// ParentReference locates an item's parent within the drive.
type ParentReference struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

// Item is an immutable snapshot of a drive object as observed during
// discovery. Timestamps are kept as the wire strings so unparseable values
// can be reported instead of silently zeroed.
type Item struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Size                 int64            `json:"size,omitempty"`
	Folder               *FolderFacet     `json:"folder,omitempty"`
	File                 *FileFacet       `json:"file,omitempty"`
	CreatedDateTime      string           `json:"createdDateTime,omitempty"`
	LastModifiedDateTime string           `json:"lastModifiedDateTime,omitempty"`
	ParentReference      *ParentReference `json:"parentReference,omitempty"`
}

// IsFolder reports whether the item carries the folder facet.
func (i Item) IsFolder() bool {
	return i.Folder != nil
}

// DateField returns the named timestamp field as its wire string, or empty
// when the field is absent or unknown.
func (i Item) DateField(field string) string {
	switch field {
	case "createdDateTime":
		return i.CreatedDateTime
	case "lastModifiedDateTime":
		return i.LastModifiedDateTime
	default:
		return ""
	}
}

// Path derives the item's full drive path by walking its parent reference and
// stripping the drive-root prefix. Items without a parent reference resolve
// to their bare name.
func (i Item) Path() string {
	if i.ParentReference == nil || i.ParentReference.Path == "" {
		return i.Name
	}
	parent := strings.TrimPrefix(i.ParentReference.Path, driveRootPrefix)
	parent = strings.TrimPrefix(parent, "/")
	if parent == "" {
		return i.Name
	}
	return parent + "/" + i.Name
}
