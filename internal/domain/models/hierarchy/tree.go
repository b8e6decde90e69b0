package hierarchy

// ItemTreeNode is an item with its children nested, ordered by sort order.
type ItemTreeNode struct {
	Item
	Children []*ItemTreeNode `json:"children"`
}

// Walk visits the node and all of its descendants depth-first.
func (n *ItemTreeNode) Walk(fn func(node *ItemTreeNode, depth int)) {
	var visit func(node *ItemTreeNode, depth int)
	visit = func(node *ItemTreeNode, depth int) {
		fn(node, depth)
		for _, child := range node.Children {
			visit(child, depth+1)
		}
	}
	visit(n, 0)
}
