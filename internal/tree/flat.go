package tree

import (
	"fmt"

	"meiosis/internal/model"
)

// Flat is one slot of a flattened tree: the node value plus the contiguous
// index range its children occupy in the same slice. Nodes appear in
// breadth-first order, root at slot 0; ChildOffset is the absolute index of
// the first child, or -1 for leaves.
type Flat struct {
	Value       any
	ChildOffset int
	ChildCount  int
}

// Flatten serializes the tree rooted at root into its flat form.
func Flatten(root *Node) ([]Flat, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", model.ErrInvalidArgument)
	}

	nodes := root.Nodes()
	out := make([]Flat, len(nodes))
	next := 1
	for i, n := range nodes {
		offset := -1
		if n.ChildCount() > 0 {
			offset = next
		}
		out[i] = Flat{
			Value:       n.Value(),
			ChildOffset: offset,
			ChildCount:  n.ChildCount(),
		}
		next += n.ChildCount()
	}
	return out, nil
}

// Unflatten rebuilds the tree a flat slice encodes. Every slot must be
// reachable exactly once from the root through valid child ranges.
func Unflatten(flat []Flat) (*Node, error) {
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: empty flat tree", model.ErrInvalidArgument)
	}

	used := make([]bool, len(flat))
	var build func(index int) (*Node, error)
	build = func(index int) (*Node, error) {
		if index < 0 || index >= len(flat) {
			return nil, fmt.Errorf("%w: child offset %d outside %d slots", model.ErrInvalidArgument, index, len(flat))
		}
		if used[index] {
			return nil, fmt.Errorf("%w: slot %d referenced twice", model.ErrInvalidArgument, index)
		}
		used[index] = true

		slot := flat[index]
		if slot.ChildCount < 0 {
			return nil, fmt.Errorf("%w: negative child count at slot %d", model.ErrInvalidArgument, index)
		}
		n := New(slot.Value)
		if slot.ChildCount == 0 {
			return n, nil
		}
		if slot.ChildOffset <= index || slot.ChildOffset+slot.ChildCount > len(flat) {
			return nil, fmt.Errorf("%w: child range [%d, %d) at slot %d", model.ErrInvalidArgument, slot.ChildOffset, slot.ChildOffset+slot.ChildCount, index)
		}
		for i := 0; i < slot.ChildCount; i++ {
			child, err := build(slot.ChildOffset + i)
			if err != nil {
				return nil, err
			}
			n.Attach(child)
		}
		return n, nil
	}

	root, err := build(0)
	if err != nil {
		return nil, err
	}
	for i, u := range used {
		if !u {
			return nil, fmt.Errorf("%w: slot %d unreachable from root", model.ErrInvalidArgument, i)
		}
	}
	return root, nil
}
