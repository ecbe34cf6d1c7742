// Package tree holds the mutable tree representation used while
// recombining tree-shaped chromosomes, and the flat codec that moves trees
// in and out of gene sequences.
package tree

// Node is a labeled tree node owning an ordered list of children. It is the
// working representation during crossover and freely mutable; chromosomes
// never store nodes directly.
type Node struct {
	value    any
	children []*Node
}

// New creates a node with the given value and no children.
func New(value any) *Node {
	return &Node{value: value}
}

// Of creates a node with the given value and children.
func Of(value any, children ...*Node) *Node {
	n := New(value)
	for _, c := range children {
		n.Attach(c)
	}
	return n
}

// Value returns the node's value.
func (n *Node) Value() any {
	return n.value
}

// SetValue replaces the node's value.
func (n *Node) SetValue(value any) {
	n.value = value
}

// ChildCount reports the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index, or nil when the index is out of range.
func (n *Node) Child(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// Attach appends a child. Nil children are ignored.
func (n *Node) Attach(child *Node) {
	if child == nil {
		return
	}
	n.children = append(n.children, child)
}

// Exchange swaps the subtrees rooted at a and b by exchanging their values
// and child lists in place. Both nodes stay attached to their parents, so
// this realizes a subtree exchange across two distinct trees without parent
// links.
func Exchange(a, b *Node) {
	a.value, b.value = b.value, a.value
	a.children, b.children = b.children, a.children
}

// Size reports the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	size := 1
	for _, c := range n.children {
		size += c.Size()
	}
	return size
}

// Nodes returns the subtree's nodes in breadth-first order, root first.
func (n *Node) Nodes() []*Node {
	out := []*Node{n}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].children...)
	}
	return out
}

// Equal reports whether two subtrees have the same shape and values.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.value != b.value || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
