// Package pathway flattens the KEGG pathways Brite hierarchy (br:br08901)
// into a mapping of node keys to node information, so pathway categories can
// be combined with other KEGG data.
package pathway

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/rest"
)

// HierarchyEntryID is the Brite hierarchy holding the pathway categories.
const HierarchyEntryID = "br:br08901"

// Node is one flattened Brite hierarchy node. Leaf nodes represent pathway
// maps and carry an entry ID; interior nodes carry their children's keys.
type Node struct {
	Name     string   `json:"name"`
	Level    int      `json:"level"`
	Parent   *string  `json:"parent"`
	Children []string `json:"children"`
	EntryID  *string  `json:"entry-id"`
}

// Organizer builds and stores the flattened hierarchy. Nodes is nil until
// LoadFromKEGG or LoadJSON fills it; keys are pathway entry IDs for leaf
// nodes and node names for interior nodes.
type Organizer struct {
	client *rest.Client
	logger *log.Logger

	Nodes map[string]*Node
}

// NewOrganizer creates an organizer pulling through client. Pass nil for
// logger to use log.Default().
func NewOrganizer(client *rest.Client, logger *log.Logger) *Organizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Organizer{client: client, logger: logger}
}

// briteNode mirrors the nested JSON form of a Brite hierarchy entry.
type briteNode struct {
	Name     string      `json:"name"`
	Children []briteNode `json:"children"`
}

// LoadFromKEGG pulls the pathways Brite hierarchy and flattens it into
// Nodes. topLevelNodes, when non-nil, selects which top level categories to
// traverse; unrecognized names are ignored with a warning. filterNodes names
// nodes to exclude along with their entire subtrees.
func (o *Organizer) LoadFromKEGG(ctx context.Context, topLevelNodes, filterNodes []string) error {
	resp, err := o.client.Get(ctx, []string{HierarchyEntryID}, "json")
	if err != nil {
		return err
	}
	switch resp.Status {
	case rest.StatusFailed:
		return kerrors.New(kerrors.ErrCodeRequestFailed,
			"The request to the KEGG web API failed with the following URL: %s", resp.URL.String())
	case rest.StatusTimeout:
		return kerrors.New(kerrors.ErrCodeRequestTimeout,
			"The request to the KEGG web API timed out with the following URL: %s", resp.URL.String())
	}

	var hierarchy briteNode
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.TextBody)), &hierarchy); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidHierarchy, err, "decoding the Brite hierarchy %s", HierarchyEntryID)
	}

	topLevel := hierarchy.Children
	if topLevelNodes != nil {
		valid := make(map[string]struct{}, len(topLevel))
		for _, node := range topLevel {
			valid[node.Name] = struct{}{}
		}
		selected := make(map[string]struct{}, len(topLevelNodes))
		for _, name := range topLevelNodes {
			if _, ok := valid[name]; !ok {
				o.logger.Warn("top level node name is not recognized and will be ignored", "name", name)
				continue
			}
			selected[name] = struct{}{}
		}
		var kept []briteNode
		for _, node := range topLevel {
			if _, ok := selected[node.Name]; ok {
				kept = append(kept, node)
			}
		}
		topLevel = kept
	}

	filter := make(map[string]struct{}, len(filterNodes))
	for _, name := range filterNodes {
		filter[name] = struct{}{}
	}

	o.Nodes = map[string]*Node{}
	_, err = o.flatten(1, topLevel, nil, filter)
	return err
}

// flatten traverses one hierarchy branch, adding its nodes and returning
// their keys.
func (o *Organizer) flatten(level int, branch []briteNode, parent *string, filter map[string]struct{}) ([]string, error) {
	var added []string
	for _, node := range branch {
		if _, excluded := filter[node.Name]; excluded {
			continue
		}
		var key string
		if len(node.Children) > 0 {
			children, err := o.flatten(level+1, node.Children, &node.Name, filter)
			if err != nil {
				return nil, err
			}
			key = node.Name
			if err := o.add(key, &Node{Name: node.Name, Level: level, Parent: parent, Children: children}); err != nil {
				return nil, err
			}
		} else {
			number, _, _ := strings.Cut(node.Name, " ")
			entryID := "path:map" + number
			key = entryID
			if err := o.add(key, &Node{Name: node.Name, Level: level, Parent: parent, EntryID: &entryID}); err != nil {
				return nil, err
			}
		}
		added = append(added, key)
	}
	return added, nil
}

func (o *Organizer) add(key string, node *Node) error {
	if _, ok := o.Nodes[key]; ok {
		return kerrors.New(kerrors.ErrCodeInvalidHierarchy, "duplicate Brite hierarchy node key %s", key)
	}
	o.Nodes[key] = node
	return nil
}

// PathwayIDs returns the entry IDs of every leaf node in sorted order.
func (o *Organizer) PathwayIDs() []string {
	var ids []string
	for _, node := range o.Nodes {
		if node.EntryID != nil {
			ids = append(ids, *node.EntryID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ToJSON renders the hierarchy nodes as indented JSON with each node's
// children sorted.
func (o *Organizer) ToJSON() ([]byte, error) {
	if o.Nodes == nil {
		return nil, kerrors.New(kerrors.ErrCodeInvalidHierarchy,
			"The hierarchy nodes have not been loaded yet. Use either LoadFromKEGG or LoadJSON")
	}
	for _, node := range o.Nodes {
		sort.Strings(node.Children)
	}
	data, err := json.MarshalIndent(o.Nodes, "", " ")
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encoding hierarchy nodes")
	}
	return data, nil
}

// SaveJSON writes the hierarchy nodes to a JSON file.
func (o *Organizer) SaveJSON(path string) error {
	data, err := o.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "saving hierarchy nodes to %s", path)
	}
	return nil
}

// LoadJSON reads hierarchy nodes from a JSON file written by SaveJSON,
// validating their shape.
func (o *Organizer) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "no hierarchy nodes file at %s", path)
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "reading hierarchy nodes from %s", path)
	}

	corrupted := func(cause error) error {
		return kerrors.Wrap(kerrors.ErrCodeInvalidHierarchy, cause,
			"Failed to load the hierarchy nodes. The pathway organizer JSON file at %s is corrupted and will need to be re-created.",
			path)
	}

	var nodes map[string]*Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return corrupted(err)
	}
	if len(nodes) == 0 {
		return corrupted(nil)
	}
	for key, node := range nodes {
		if key == "" || node == nil || node.Name == "" || node.Level < 1 {
			return corrupted(nil)
		}
		if node.Children == nil && node.EntryID == nil {
			return corrupted(nil)
		}
	}
	o.Nodes = nodes
	return nil
}
