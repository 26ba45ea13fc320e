package expr

func (c *NumNode) NodeCount() int { return 1 }
func (s *SymNode) NodeCount() int { return 1 }
func (f *FuncNode) NodeCount() int { return 1 + f.Arg.NodeCount() }
func (u *NegNode) NodeCount() int { return 1 + u.Child.NodeCount() }
func (b *BinaryNode) NodeCount() int {
	return 1 + b.Left.NodeCount() + b.Right.NodeCount()
}

func (c *NumNode) Depth() int { return 1 }
func (s *SymNode) Depth() int { return 1 }
func (f *FuncNode) Depth() int { return 1 + f.Arg.Depth() }
func (u *NegNode) Depth() int { return 1 + u.Child.Depth() }
func (b *BinaryNode) Depth() int {
	ld := b.Left.Depth()
	rd := b.Right.Depth()
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// Symbols returns the distinct symbol names in e, in first-seen order.
func Symbols(e Expr) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(node Expr) {
		switch n := node.(type) {
		case *SymNode:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *BinaryNode:
			walk(n.Left)
			walk(n.Right)
		case *FuncNode:
			walk(n.Arg)
		case *NegNode:
			walk(n.Child)
		}
	}
	walk(e)
	return names
}
