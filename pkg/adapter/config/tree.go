// pkg/adapter/config/tree.go
package config

import (
	"sort"
	"strconv"
	"strings"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
)

// treeNode is a node of the merged configuration. Its path is the dotted
// path used to look values up in a layer.
type treeNode struct {
	key      string
	path     string
	children map[string]*treeNode
}

var _ domainconfig.Node = (*treeNode)(nil)

func newTreeNode(key, path string) *treeNode {
	return &treeNode{key: key, path: path, children: make(map[string]*treeNode)}
}

func (n *treeNode) Key() string { return n.key }

func (n *treeNode) Path() string { return n.path }

// Children returns the child nodes, array indexes numerically first and
// other keys in lexical order.
func (n *treeNode) Children() []domainconfig.Node {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	nodes := make([]domainconfig.Node, len(keys))
	for i, k := range keys {
		nodes[i] = n.children[k]
	}
	return nodes
}

func (n *treeNode) insert(path string) {
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return
		}
	}

	current := n
	for _, seg := range segments {
		child, ok := current.children[seg]
		if !ok {
			child = newTreeNode(seg, joinPath(current.path, seg))
			current.children[seg] = child
		}
		current = child
	}
}

func lessKey(a, b string) bool {
	ai, aErr := strconv.ParseUint(a, 10, 64)
	bi, bErr := strconv.ParseUint(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil && ai != bi:
		return ai < bi
	case aErr == nil && bErr == nil:
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// buildTree returns the union of every path the layers can enumerate.
func buildTree(layers []*layer) *treeNode {
	root := newTreeNode("", "")
	for _, l := range layers {
		for _, p := range l.paths() {
			root.insert(p)
		}
	}
	return root
}
