package graph_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"drivesort/internal/logging"
	"drivesort/internal/services/graph"
)

func newTestOperations(t *testing.T, handler http.Handler) *graph.Operations {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := graph.NewClient(server.URL, graph.StaticToken("t"), server.Client(), logging.NewNop())
	restore := client.SetSleepForTests(nil)
	t.Cleanup(restore)
	return graph.NewOperations(client, logging.NewNop())
}

func TestListChildrenEncodesFolderPath(t *testing.T) {
	var requested string
	ops := newTestOperations(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.EscapedPath()
		fmt.Fprint(w, `{"value":[]}`)
	}))

	if _, err := ops.ListChildren(context.Background(), "My Files/2024"); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if requested != "/me/drive/root:/My%20Files/2024:/children" {
		t.Fatalf("unexpected request path: %q", requested)
	}
}

func TestListChildrenEmptyPathListsRoot(t *testing.T) {
	var requested string
	ops := newTestOperations(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		fmt.Fprint(w, `{"value":[{"id":"1","name":"a.txt"}]}`)
	}))

	items, err := ops.ListChildren(context.Background(), "")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if requested != "/me/drive/root/children" {
		t.Fatalf("unexpected request path: %q", requested)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestEnsureFolderPathCreatesMissingSegments(t *testing.T) {
	// "Organized" exists, "2024" and "03_March" below it do not.
	var creates []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet && path == "/me/drive/root:/Organized":
			fmt.Fprint(w, `{"id":"f-organized","name":"Organized","folder":{}}`)
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"not found"}}`)
		case r.Method == http.MethodPost:
			var payload struct {
				Name string `json:"name"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			creates = append(creates, payload.Name)
			fmt.Fprintf(w, `{"id":"f-%s","name":%q,"folder":{}}`, payload.Name, payload.Name)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	ops := newTestOperations(t, handler)
	folder, err := ops.EnsureFolderPath(context.Background(), "Organized/2024/03_March")
	if err != nil {
		t.Fatalf("EnsureFolderPath: %v", err)
	}
	if folder.ID != "f-03_March" {
		t.Fatalf("unexpected folder: %+v", folder)
	}
	if len(creates) != 2 || creates[0] != "2024" || creates[1] != "03_March" {
		t.Fatalf("unexpected creates: %v", creates)
	}
}

func TestCreateFolderFetchesExistingOnConflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":{"code":"nameAlreadyExists","message":"already there"}}`)
		case http.MethodGet:
			fmt.Fprint(w, `{"id":"f-existing","name":"2024","folder":{}}`)
		}
	})

	ops := newTestOperations(t, handler)
	folder, err := ops.CreateFolder(context.Background(), "Organized", "2024")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder.ID != "f-existing" {
		t.Fatalf("expected the existing folder, got %+v", folder)
	}
}

func TestMoveItemSendsParentAndName(t *testing.T) {
	var (
		method  string
		path    string
		payload struct {
			ParentReference struct {
				ID string `json:"id"`
			} `json:"parentReference"`
			Name string `json:"name"`
		}
	)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		fmt.Fprint(w, `{"id":"item-1","name":"report_1.pdf"}`)
	})

	ops := newTestOperations(t, handler)
	moved, err := ops.MoveItem(context.Background(), "item-1", "folder-9", "report_1.pdf")
	if err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if method != http.MethodPatch || path != "/me/drive/items/item-1" {
		t.Fatalf("unexpected request: %s %s", method, path)
	}
	if payload.ParentReference.ID != "folder-9" || payload.Name != "report_1.pdf" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if moved.Name != "report_1.pdf" {
		t.Fatalf("unexpected moved item: %+v", moved)
	}
}

func TestItemPathStripsDrivePrefix(t *testing.T) {
	item := graph.Item{
		Name:            "a.txt",
		ParentReference: &graph.ParentReference{Path: "/drive/root:/Inbox/Sub"},
	}
	if got := item.Path(); got != "Inbox/Sub/a.txt" {
		t.Fatalf("unexpected path: %q", got)
	}

	rooted := graph.Item{Name: "b.txt", ParentReference: &graph.ParentReference{Path: "/drive/root:"}}
	if got := rooted.Path(); got != "b.txt" {
		t.Fatalf("unexpected root path: %q", got)
	}
}
