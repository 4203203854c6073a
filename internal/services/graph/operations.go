package graph

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"drivesort/internal/logging"
	"drivesort/internal/services"
)

// Operations provides drive-level semantics over the raw Graph client.
type Operations struct {
	client *Client
	logger *slog.Logger
}

// NewOperations wraps a Graph client with drive operations.
func NewOperations(client *Client, logger *slog.Logger) *Operations {
	return &Operations{
		client: client,
		logger: logging.WithComponent(logger, "drive"),
	}
}

func childrenEndpoint(folderPath string) string {
	if folderPath == "" {
		return "/me/drive/root/children"
	}
	return "/me/drive/root:/" + encodePath(folderPath) + ":/children"
}

func itemEndpoint(path string) string {
	return "/me/drive/root:/" + encodePath(path)
}

// encodePath escapes each path segment while preserving separators.
func encodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// ListChildren returns the immediate children of a folder path. An empty
// path lists the drive root. Pagination is followed transparently.
func (o *Operations) ListChildren(ctx context.Context, folderPath string) ([]Item, error) {
	return o.client.GetPaginated(ctx, childrenEndpoint(folderPath))
}

// GetItemByPath resolves an item by its drive path.
func (o *Operations) GetItemByPath(ctx context.Context, path string) (Item, error) {
	var item Item
	if err := o.client.Get(ctx, itemEndpoint(path), &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Root returns the drive root item.
func (o *Operations) Root(ctx context.Context) (Item, error) {
	var item Item
	if err := o.client.Get(ctx, "/me/drive/root", &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

type createFolderPayload struct {
	Name             string       `json:"name"`
	Folder           *FolderFacet `json:"folder"`
	ConflictBehavior string       `json:"@microsoft.graph.conflictBehavior"`
}

// CreateFolder creates a folder under parentPath. When the folder already
// exists the existing folder is fetched and returned, so the call is
// effectively create-or-fetch.
func (o *Operations) CreateFolder(ctx context.Context, parentPath, name string) (Item, error) {
	payload := createFolderPayload{
		Name:             name,
		Folder:           &FolderFacet{},
		ConflictBehavior: "fail",
	}

	var created Item
	err := o.client.Post(ctx, childrenEndpoint(parentPath), payload, &created)
	if err == nil {
		o.logger.Debug("folder created",
			logging.String("parent", parentPath),
			logging.String("name", name))
		return created, nil
	}
	if strings.Contains(err.Error(), "nameAlreadyExists") {
		existing := name
		if parentPath != "" {
			existing = parentPath + "/" + name
		}
		return o.GetItemByPath(ctx, existing)
	}
	return Item{}, err
}

// EnsureFolderPath walks a folder path segment by segment, fetching existing
// folders and creating missing ones. Idempotent: an existing path is a
// success. An empty path resolves to the drive root.
func (o *Operations) EnsureFolderPath(ctx context.Context, folderPath string) (Item, error) {
	if folderPath == "" {
		return o.Root(ctx)
	}

	var folder Item
	currentPath := ""
	for _, segment := range strings.Split(folderPath, "/") {
		testPath := segment
		if currentPath != "" {
			testPath = currentPath + "/" + segment
		}
		existing, err := o.GetItemByPath(ctx, testPath)
		switch {
		case err == nil:
			folder = existing
		case errors.Is(err, services.ErrNotFound):
			created, createErr := o.CreateFolder(ctx, currentPath, segment)
			if createErr != nil {
				return Item{}, createErr
			}
			folder = created
		default:
			return Item{}, err
		}
		currentPath = testPath
	}
	return folder, nil
}

type moveItemPayload struct {
	ParentReference ParentReference `json:"parentReference"`
	Name            string          `json:"name,omitempty"`
}

// MoveItem reparents an item to the destination folder, optionally renaming
// it in the same request.
func (o *Operations) MoveItem(ctx context.Context, itemID, destinationFolderID, newName string) (Item, error) {
	payload := moveItemPayload{
		ParentReference: ParentReference{ID: destinationFolderID},
		Name:            newName,
	}

	var moved Item
	if err := o.client.Patch(ctx, "/me/drive/items/"+url.PathEscape(itemID), payload, &moved); err != nil {
		return Item{}, err
	}
	return moved, nil
}
