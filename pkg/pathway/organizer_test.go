package pathway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/rest"
)

const briteJSON = `{
  "name": "br08901",
  "children": [
    {
      "name": "Metabolism",
      "children": [
        {
          "name": "Carbohydrate metabolism",
          "children": [
            {"name": "00010 Glycolysis / Gluconeogenesis"},
            {"name": "00020 Citrate cycle (TCA cycle)"}
          ]
        }
      ]
    },
    {
      "name": "Human Diseases",
      "children": [
        {
          "name": "Cancer: overview",
          "children": [
            {"name": "05200 Pathways in cancer"}
          ]
        }
      ]
    }
  ]
}`

func briteClient(t *testing.T) *rest.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get/br:br08901/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, briteJSON)
	}))
	t.Cleanup(server.Close)

	client, err := rest.NewClient(rest.WithBuilder(kegg.NewBuilder(server.URL, nil, nil)))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestOrganizer_LoadFromKEGG(t *testing.T) {
	o := NewOrganizer(briteClient(t), nil)
	if err := o.LoadFromKEGG(context.Background(), nil, nil); err != nil {
		t.Fatalf("LoadFromKEGG failed: %v", err)
	}

	leaf, ok := o.Nodes["path:map00010"]
	if !ok {
		t.Fatal("expected leaf node path:map00010")
	}
	if leaf.Name != "00010 Glycolysis / Gluconeogenesis" || leaf.Level != 3 {
		t.Errorf("unexpected leaf: %+v", leaf)
	}
	if leaf.Parent == nil || *leaf.Parent != "Carbohydrate metabolism" {
		t.Errorf("unexpected parent: %v", leaf.Parent)
	}
	if leaf.EntryID == nil || *leaf.EntryID != "path:map00010" {
		t.Errorf("unexpected entry ID: %v", leaf.EntryID)
	}
	if leaf.Children != nil {
		t.Errorf("leaf nodes carry no children: %v", leaf.Children)
	}

	top, ok := o.Nodes["Metabolism"]
	if !ok {
		t.Fatal("expected interior node Metabolism")
	}
	if top.Level != 1 || top.Parent != nil || top.EntryID != nil {
		t.Errorf("unexpected top node: %+v", top)
	}
	if !reflect.DeepEqual(top.Children, []string{"Carbohydrate metabolism"}) {
		t.Errorf("unexpected children: %v", top.Children)
	}

	interior := o.Nodes["Carbohydrate metabolism"]
	if !reflect.DeepEqual(interior.Children, []string{"path:map00010", "path:map00020"}) {
		t.Errorf("unexpected children: %v", interior.Children)
	}

	want := []string{"path:map00010", "path:map00020", "path:map05200"}
	if got := o.PathwayIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("PathwayIDs = %v, want %v", got, want)
	}
}

func TestOrganizer_TopLevelSelection(t *testing.T) {
	o := NewOrganizer(briteClient(t), nil)
	err := o.LoadFromKEGG(context.Background(), []string{"Metabolism", "Not A Category"}, nil)
	if err != nil {
		t.Fatalf("LoadFromKEGG failed: %v", err)
	}

	if _, ok := o.Nodes["Metabolism"]; !ok {
		t.Error("selected top level node missing")
	}
	if _, ok := o.Nodes["Human Diseases"]; ok {
		t.Error("unselected top level node should be excluded")
	}
	if _, ok := o.Nodes["path:map05200"]; ok {
		t.Error("children of unselected top level nodes should be excluded")
	}
}

func TestOrganizer_FilterNodes(t *testing.T) {
	o := NewOrganizer(briteClient(t), nil)
	err := o.LoadFromKEGG(context.Background(), nil, []string{"Carbohydrate metabolism"})
	if err != nil {
		t.Fatalf("LoadFromKEGG failed: %v", err)
	}

	if _, ok := o.Nodes["Carbohydrate metabolism"]; ok {
		t.Error("filtered node should be excluded")
	}
	if _, ok := o.Nodes["path:map00010"]; ok {
		t.Error("filtered subtrees should be excluded entirely")
	}
	if _, ok := o.Nodes["path:map05200"]; !ok {
		t.Error("unrelated branches should survive the filter")
	}
}

func TestOrganizer_JSONRoundTrip(t *testing.T) {
	o := NewOrganizer(briteClient(t), nil)
	if err := o.LoadFromKEGG(context.Background(), nil, nil); err != nil {
		t.Fatalf("LoadFromKEGG failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "hierarchy-nodes.json")
	if err := o.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	loaded := NewOrganizer(nil, nil)
	if err := loaded.LoadJSON(path); err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Nodes, o.Nodes) {
		t.Error("round trip mismatch")
	}
}

func TestOrganizer_LoadJSONCorrupted(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{
		"bad.json":     `{"key": {"name": ""}}`,
		"empty.json":   `{}`,
		"invalid.json": `not json`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		o := NewOrganizer(nil, nil)
		err := o.LoadJSON(path)
		if !kerrors.Is(err, kerrors.ErrCodeInvalidHierarchy) {
			t.Errorf("%s: expected INVALID_HIERARCHY, got %v", name, err)
		}
	}
}

func TestOrganizer_ToJSONRequiresLoad(t *testing.T) {
	o := NewOrganizer(nil, nil)
	if _, err := o.ToJSON(); !kerrors.Is(err, kerrors.ErrCodeInvalidHierarchy) {
		t.Errorf("expected INVALID_HIERARCHY, got %v", err)
	}
}
