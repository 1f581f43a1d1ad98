package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/eivindn/inventar/internal/images"
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/testutil"
)

const mcpFixture = `# ID:Garasje Garasjen
* ID:A23 Vinterboksen

## A23 Vinterutstyr (tag:vinter)
* Langrennsski
* Skistaver (antall:2)

## B7 Verktøy
* Hammer
`

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestInventoryDir(t)
	if err := store.Write("inventar.md", []byte(mcpFixture)); err != nil {
		t.Fatal(err)
	}
	svc := inventoryservice.NewService(store, testutil.TestDB(t),
		images.NewFSDiscoverer(store), testutil.DiscardLogger(), "inventar.md")
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(svc, store)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "search_inventory":
		result, err = srv.searchInventory(ctx, req)
	case "get_container":
		result, err = srv.getContainer(ctx, req)
	case "list_containers":
		result, err = srv.listContainers(ctx, req)
	case "add_item":
		result, err = srv.addItem(ctx, req)
	case "remove_item":
		result, err = srv.removeItem(ctx, req)
	case "upload_photo":
		result, err = srv.uploadPhoto(ctx, req)
	case "get_inventory_contract":
		result, err = srv.getInventoryContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchInventoryTool(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "search_inventory", map[string]interface{}{"query": "Skistaver"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	text := resultText(res)
	if !strings.Contains(text, `"A23"`) || !strings.Contains(text, "Skistaver (antall:2)") {
		t.Errorf("search output missing hit:\n%s", text)
	}
}

func TestGetContainerTool(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "get_container", map[string]interface{}{"id": "a23"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	text := resultText(res)
	if !strings.Contains(text, `"id": "A23"`) || !strings.Contains(text, `"parent": "Garasje"`) {
		t.Errorf("container output:\n%s", text)
	}

	res = callTool(t, srv, "get_container", map[string]interface{}{"id": "X99"})
	if !res.IsError {
		t.Error("expected error for unknown container")
	}
}

func TestListContainersTool(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "list_containers", map[string]interface{}{"parent": "Garasje"})
	text := resultText(res)
	if !strings.Contains(text, `"A23"`) || !strings.Contains(text, `"B7"`) {
		t.Errorf("parent filter output:\n%s", text)
	}

	res = callTool(t, srv, "list_containers", map[string]interface{}{"tag": "vinter"})
	text = resultText(res)
	if !strings.Contains(text, `"A23"`) || strings.Contains(text, `"B7"`) {
		t.Errorf("tag filter output:\n%s", text)
	}
}

func TestAddAndRemoveItemTools(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "add_item", map[string]interface{}{
		"container": "A23",
		"text":      "Ullgenser (antall:3)",
	})
	if res.IsError {
		t.Fatalf("add_item error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "now 3 items") {
		t.Errorf("add_item output: %s", resultText(res))
	}

	res = callTool(t, srv, "remove_item", map[string]interface{}{
		"container": "A23",
		"match":     "ullgenser",
	})
	if res.IsError {
		t.Fatalf("remove_item error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "now 2 items") {
		t.Errorf("remove_item output: %s", resultText(res))
	}

	res = callTool(t, srv, "remove_item", map[string]interface{}{
		"container": "A23",
		"match":     "ullgenser",
	})
	if !res.IsError {
		t.Error("expected error removing missing item")
	}
}

func TestGetInventoryContractTool(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "get_inventory_contract", nil)
	text := resultText(res)
	if !strings.Contains(text, "# Inventory Document Format") {
		t.Errorf("contract output:\n%s", text)
	}
}

func TestUploadPhotoTool(t *testing.T) {
	srv := testServer(t)

	// Minimal PNG signature, base64-encoded.
	res := callTool(t, srv, "upload_photo", map[string]interface{}{
		"container": "A23",
		"url":       "data:image/png;base64,iVBORw0KGgo=",
		"filename":  "hylle.png",
	})
	if res.IsError {
		t.Fatalf("upload_photo error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "photos/A23/hylle.png") {
		t.Errorf("upload output: %s", resultText(res))
	}

	// Same name again collides.
	res = callTool(t, srv, "upload_photo", map[string]interface{}{
		"container": "A23",
		"url":       "data:image/png;base64,iVBORw0KGgo=",
		"filename":  "hylle.png",
	})
	if !res.IsError {
		t.Error("expected error for duplicate photo name")
	}
}

func TestUploadPhotoRejectsMismatchedContent(t *testing.T) {
	srv := testServer(t)

	// Payload claims PNG mime but the bytes are plain text.
	res := callTool(t, srv, "upload_photo", map[string]interface{}{
		"container": "A23",
		"url":       "data:image/png;base64,aGVpIHZlcmRlbg==",
		"filename":  "fake.png",
	})
	if !res.IsError {
		t.Error("expected magic byte validation failure")
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "search_inventory", map[string]interface{}{})
	if !res.IsError {
		t.Error("expected error for missing query")
	}
}
