// Package favorites implements spec §4.K's favorites tree: folders, items
// (board or thread bookmarks), and separators, with move/reorder operations
// that keep the tree acyclic.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// Kind discriminates the tagged FavNode variants of spec §3.
type Kind string

const (
	KindFolder    Kind = "folder"
	KindItem      Kind = "item"
	KindSeparator Kind = "separator"
)

// ItemType distinguishes a bookmarked board from a bookmarked thread.
type ItemType string

const (
	ItemBoard  ItemType = "board"
	ItemThread ItemType = "thread"
)

// Position names where a dragged node lands relative to a drop target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// Node is spec §3's FavNode. Fields not relevant to a Kind are left zero;
// Children is populated only for KindFolder.
type Node struct {
	Kind      Kind     `json:"kind"`
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Type      ItemType `json:"type,omitempty"`
	URL       string   `json:"url,omitempty"`
	BoardType string   `json:"boardType,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
}

// Tree is the root of the favorites tree. The root itself has no Node
// representation; Roots holds its immediate children.
type Tree struct {
	Roots []*Node `json:"roots"`
	path  string
}

// NewFolder builds an unattached KindFolder node.
func NewFolder(title string) *Node {
	return &Node{Kind: KindFolder, ID: uuid.NewString(), Title: title}
}

// NewSeparator builds an unattached KindSeparator node.
func NewSeparator() *Node {
	return &Node{Kind: KindSeparator, ID: uuid.NewString()}
}

// NewItem builds an unattached KindItem node bookmarking a board or thread.
func NewItem(itemType ItemType, url, title, boardType string) *Node {
	return &Node{Kind: KindItem, ID: uuid.NewString(), Type: itemType, URL: url, Title: title, BoardType: boardType}
}

// New creates an empty Tree persisted at path.
func New(path string) *Tree {
	return &Tree{path: path}
}

// Load reads a Tree from path. A missing file yields an empty tree.
func Load(path string) (*Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, fmt.Errorf("favorites: read %s: %w", path, err)
	}
	var t Tree
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("favorites: parse %s: %w", path, err)
	}
	t.path = path
	return &t, nil
}

// Save persists the tree atomically to its path.
func (t *Tree) Save() error {
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("favorites: encode tree: %w", err)
	}
	return util.WriteFileAtomic(t.path, raw, 0o600)
}

// Add appends node to the root.
func (t *Tree) Add(node *Node) {
	t.Roots = append(t.Roots, node)
}

// Remove deletes the node with id anywhere in the tree (deep search),
// reporting whether it was found.
func (t *Tree) Remove(id string) bool {
	newRoots, removed := removeFrom(t.Roots, id)
	t.Roots = newRoots
	return removed
}

func removeFrom(nodes []*Node, id string) ([]*Node, bool) {
	out := make([]*Node, 0, len(nodes))
	removed := false
	for _, n := range nodes {
		if n.ID == id {
			removed = true
			continue
		}
		if n.Kind == KindFolder {
			n.Children, _ = removeFrom(n.Children, id)
		}
		out = append(out, n)
	}
	return out, removed
}

// Find locates a node by id anywhere in the tree.
func (t *Tree) Find(id string) *Node {
	return findIn(t.Roots, id)
}

func findIn(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if n.Kind == KindFolder {
			if found := findIn(n.Children, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// MoveToFolder detaches node from its current location and appends it to
// folder's children. It refuses the move if folder is node itself or one of
// node's descendants, which would make the tree cyclic.
func (t *Tree) MoveToFolder(nodeID, folderID string) error {
	if nodeID == folderID {
		return fmt.Errorf("favorites: cannot move a node into itself")
	}
	node := t.Find(nodeID)
	if node == nil {
		return fmt.Errorf("favorites: node %s not found", nodeID)
	}
	folder := t.Find(folderID)
	if folder == nil {
		return fmt.Errorf("favorites: folder %s not found", folderID)
	}
	if folder.Kind != KindFolder {
		return fmt.Errorf("favorites: target %s is not a folder", folderID)
	}
	if isDescendant(node, folderID) {
		return fmt.Errorf("favorites: cannot move folder %s into its own descendant %s", nodeID, folderID)
	}

	t.Roots, _ = removeFrom(t.Roots, nodeID)
	folder.Children = append(folder.Children, node)
	return nil
}

// isDescendant reports whether targetID names node itself or appears
// anywhere within node's subtree.
func isDescendant(node *Node, targetID string) bool {
	if node.ID == targetID {
		return true
	}
	for _, child := range node.Children {
		if isDescendant(child, targetID) {
			return true
		}
	}
	return false
}

// Reorder moves drag to sit immediately before, after, or inside drop. Inside
// is only legal when drop is a folder. The tree's acyclic invariant is
// enforced exactly as in MoveToFolder when position is PositionInside.
func (t *Tree) Reorder(dragID, dropID string, position Position) error {
	if dragID == dropID {
		return fmt.Errorf("favorites: cannot reorder a node relative to itself")
	}
	if position == PositionInside {
		return t.MoveToFolder(dragID, dropID)
	}

	drag := t.Find(dragID)
	if drag == nil {
		return fmt.Errorf("favorites: node %s not found", dragID)
	}
	if t.Find(dropID) == nil {
		return fmt.Errorf("favorites: node %s not found", dropID)
	}
	if isDescendant(drag, dropID) {
		return fmt.Errorf("favorites: cannot reorder %s next to its own descendant %s", dragID, dropID)
	}

	t.Roots, _ = removeFrom(t.Roots, dragID)
	var inserted bool
	t.Roots, inserted = insertRelative(t.Roots, drag, dropID, position)
	if !inserted {
		// dropID was not found once drag was detached; drag is appended to
		// the end of the root list.
		t.Roots = append(t.Roots, drag)
	}
	return nil
}

func insertRelative(nodes []*Node, drag *Node, dropID string, position Position) ([]*Node, bool) {
	for i, n := range nodes {
		if n.ID == dropID {
			out := make([]*Node, 0, len(nodes)+1)
			out = append(out, nodes[:i]...)
			if position == PositionBefore {
				out = append(out, drag, n)
			} else {
				out = append(out, n, drag)
			}
			out = append(out, nodes[i+1:]...)
			return out, true
		}
		if n.Kind == KindFolder {
			children, ok := insertRelative(n.Children, drag, dropID, position)
			if ok {
				n.Children = children
				return nodes, true
			}
		}
	}
	return nodes, false
}
