package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"drivesort/internal/services"
	"drivesort/internal/services/graph"
)

// MoveCall records one MoveItem invocation against the fake drive.
type MoveCall struct {
	ItemID   string
	ParentID string
	NewName  string
}

type fakeNode struct {
	id       string
	name     string
	folder   bool
	parentID string
	created  string
	modified string
	children map[string]string
}

// FakeDrive is an in-memory drive tree implementing the remote surfaces the
// organize engine, folder manager, and undo runner consume.
type FakeDrive struct {
	mu     sync.Mutex
	nodes  map[string]*fakeNode
	nextID int

	// EnsureCalls counts EnsureFolderPath invocations per path.
	EnsureCalls map[string]int
	// Moves records every MoveItem call in order.
	Moves []MoveCall
	// FailMoves maps item ids to errors returned from MoveItem.
	FailMoves map[string]error
	// FailEnsure maps folder paths to errors returned from EnsureFolderPath.
	FailEnsure map[string]error
	// FailList maps folder paths to errors returned from ListChildren.
	FailList map[string]error
}

const fakeRootID = "root"

func NewFakeDrive() *FakeDrive {
	return &FakeDrive{
		nodes: map[string]*fakeNode{
			fakeRootID: {
				id:       fakeRootID,
				folder:   true,
				children: make(map[string]string),
			},
		},
		EnsureCalls: make(map[string]int),
		FailMoves:   make(map[string]error),
		FailEnsure:  make(map[string]error),
		FailList:    make(map[string]error),
	}
}

func (d *FakeDrive) newID() string {
	d.nextID++
	return fmt.Sprintf("item-%d", d.nextID)
}

// AddFolder creates the folder path, including intermediates, and returns the
// id of the deepest folder.
func (d *FakeDrive) AddFolder(folderPath string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureLocked(folderPath)
}

// AddFile places a file under parentPath with the given timestamps and
// returns the created item. Timestamps use the remote wire format; created
// may be empty to simulate items missing the date field.
func (d *FakeDrive) AddFile(parentPath, name, created string) graph.Item {
	d.mu.Lock()
	defer d.mu.Unlock()

	parentID := d.ensureLocked(parentPath)
	node := &fakeNode{
		id:       d.newID(),
		name:     name,
		parentID: parentID,
		created:  created,
		modified: created,
	}
	d.nodes[node.id] = node
	d.nodes[parentID].children[name] = node.id
	return d.itemLocked(node)
}

func (d *FakeDrive) ensureLocked(folderPath string) string {
	current := fakeRootID
	for _, segment := range splitSegments(folderPath) {
		parent := d.nodes[current]
		if childID, ok := parent.children[segment]; ok {
			current = childID
			continue
		}
		node := &fakeNode{
			id:       d.newID(),
			name:     segment,
			folder:   true,
			parentID: current,
			children: make(map[string]string),
		}
		d.nodes[node.id] = node
		parent.children[segment] = node.id
		current = node.id
	}
	return current
}

func splitSegments(folderPath string) []string {
	trimmed := strings.Trim(folderPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// pathLocked reconstructs the drive-relative path of a node's parent chain.
func (d *FakeDrive) parentPathLocked(node *fakeNode) string {
	var segments []string
	for id := node.parentID; id != "" && id != fakeRootID; {
		parent := d.nodes[id]
		segments = append([]string{parent.name}, segments...)
		id = parent.parentID
	}
	return strings.Join(segments, "/")
}

func (d *FakeDrive) itemLocked(node *fakeNode) graph.Item {
	item := graph.Item{
		ID:                   node.id,
		Name:                 node.name,
		CreatedDateTime:      node.created,
		LastModifiedDateTime: node.modified,
	}
	if node.folder {
		item.Folder = &graph.FolderFacet{ChildCount: len(node.children)}
	} else {
		item.File = &graph.FileFacet{}
	}
	refPath := "/drive/root:"
	if parent := d.parentPathLocked(node); parent != "" {
		refPath += "/" + parent
	}
	item.ParentReference = &graph.ParentReference{ID: node.parentID, Path: refPath}
	return item
}

func (d *FakeDrive) resolveLocked(path string) (*fakeNode, error) {
	current := fakeRootID
	for _, segment := range splitSegments(path) {
		node := d.nodes[current]
		childID, ok := node.children[segment]
		if !ok {
			return nil, services.Wrap(services.ErrNotFound, "fakedrive", "resolve",
				fmt.Sprintf("path %q not found", path), nil)
		}
		current = childID
	}
	return d.nodes[current], nil
}

// ItemPath returns the full drive-relative path of an item by id. Test
// assertions use it to verify final tree shape.
func (d *FakeDrive) ItemPath(itemID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	node, ok := d.nodes[itemID]
	if !ok {
		return "", false
	}
	parent := d.parentPathLocked(node)
	if parent == "" {
		return node.name, true
	}
	return parent + "/" + node.name, true
}

func (d *FakeDrive) ListChildren(ctx context.Context, folderPath string) ([]graph.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.FailList[folderPath]; err != nil {
		return nil, err
	}
	folder, err := d.resolveLocked(folderPath)
	if err != nil {
		return nil, err
	}

	var items []graph.Item
	for _, childID := range folder.children {
		items = append(items, d.itemLocked(d.nodes[childID]))
	}
	return items, nil
}

func (d *FakeDrive) GetItemByPath(ctx context.Context, path string) (graph.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	node, err := d.resolveLocked(path)
	if err != nil {
		return graph.Item{}, err
	}
	return d.itemLocked(node), nil
}

func (d *FakeDrive) Root(ctx context.Context) (graph.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.itemLocked(d.nodes[fakeRootID]), nil
}

func (d *FakeDrive) EnsureFolderPath(ctx context.Context, folderPath string) (graph.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.EnsureCalls[folderPath]++
	if err := d.FailEnsure[folderPath]; err != nil {
		return graph.Item{}, err
	}
	id := d.ensureLocked(folderPath)
	return d.itemLocked(d.nodes[id]), nil
}

func (d *FakeDrive) MoveItem(ctx context.Context, itemID, destinationFolderID, newName string) (graph.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Moves = append(d.Moves, MoveCall{ItemID: itemID, ParentID: destinationFolderID, NewName: newName})
	if err := d.FailMoves[itemID]; err != nil {
		return graph.Item{}, err
	}

	node, ok := d.nodes[itemID]
	if !ok {
		return graph.Item{}, services.Wrap(services.ErrNotFound, "fakedrive", "move",
			fmt.Sprintf("item %q not found", itemID), nil)
	}
	dest, ok := d.nodes[destinationFolderID]
	if !ok || !dest.folder {
		return graph.Item{}, services.Wrap(services.ErrNotFound, "fakedrive", "move",
			fmt.Sprintf("destination %q not found", destinationFolderID), nil)
	}

	delete(d.nodes[node.parentID].children, node.name)
	if newName != "" {
		node.name = newName
	}
	node.parentID = destinationFolderID
	dest.children[node.name] = node.id
	return d.itemLocked(node), nil
}
