package wire

import "fmt"

// TreeNode is a decoded node placed back into its hierarchy.
type TreeNode struct {
	Index    int
	Node     *Node
	Children []*TreeNode
}

// BuildTree rebuilds the hierarchy of a pre-order node list from the child
// counts alone. A list may hold several roots.
func BuildTree(nodes []Node) ([]*TreeNode, error) {
	type frame struct {
		node      *TreeNode
		remaining uint32
	}
	var (
		roots []*TreeNode
		stack []frame
	)
	for i := range nodes {
		tn := &TreeNode{Index: i, Node: &nodes[i]}
		if len(stack) == 0 {
			roots = append(roots, tn)
		} else {
			top := &stack[len(stack)-1]
			top.node.Children = append(top.node.Children, tn)
			top.remaining--
		}
		for len(stack) > 0 && stack[len(stack)-1].remaining == 0 {
			stack = stack[:len(stack)-1]
		}
		if nodes[i].ChildCount > 0 {
			stack = append(stack, frame{node: tn, remaining: nodes[i].ChildCount})
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return roots, fmt.Errorf("%w: node %d (%s) is missing %d children", ErrMalformed, top.node.Index, top.node.Node.Name, top.remaining)
	}
	return roots, nil
}

// Walk visits t and its descendants depth-first with their depth.
func (t *TreeNode) Walk(fn func(n *TreeNode, depth int)) {
	t.walk(fn, 0)
}

func (t *TreeNode) walk(fn func(n *TreeNode, depth int), depth int) {
	fn(t, depth)
	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}
