package ast

// Block is an ordered sequence of Id declarations plus an ordered sequence
// of Stmts, with a pointer to its enclosing block and a globally unique
// numeric id (spec.md §3). The root block created by the parser has Up ==
// NoBlock and no Stmts: only top-level contract/interface declarations.
type Block struct {
	Num  int
	Up   BlockHandle
	Name string // set for labelled blocks (loop/switch bodies), used by BREAK/CONTINUE

	Ids   []IDHandle
	Stmts []*Stmt
}

func (b *Block) AddID(h IDHandle) {
	b.Ids = append(b.Ids, h)
}

func (b *Block) AddStmt(s *Stmt) {
	b.Stmts = append(b.Stmts, s)
}

// IsRoot reports whether b has no enclosing block, the shape the Check
// Driver asserts of its entry argument (spec.md §4.3).
func (b *Block) IsRoot() bool { return b.Up == NoBlock }
