package expr

// Equality is structural: two trees are equal when they have the same shape
// and the same leaves, regardless of whether nodes are shared.

func (c *NumNode) Equal(other Expr) bool {
	o, ok := other.(*NumNode)
	return ok && c.Val == o.Val
}

func (s *SymNode) Equal(other Expr) bool {
	o, ok := other.(*SymNode)
	return ok && s.Name == o.Name
}

func (f *FuncNode) Equal(other Expr) bool {
	o, ok := other.(*FuncNode)
	return ok && f.Name == o.Name && f.Arg.Equal(o.Arg)
}

func (u *NegNode) Equal(other Expr) bool {
	o, ok := other.(*NegNode)
	return ok && u.Child.Equal(o.Child)
}

func (b *BinaryNode) Equal(other Expr) bool {
	o, ok := other.(*BinaryNode)
	return ok && b.Op == o.Op && b.Left.Equal(o.Left) && b.Right.Equal(o.Right)
}
