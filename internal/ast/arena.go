// Package ast is the arena-allocated AST: Block, Id, Stmt and Exp form a
// tree with ownership flowing only downward (spec.md §3, design note §9).
// Up/enclosing references are non-owning integer handles into the Arena
// rather than raw pointers, so a cyclic graph (child -> parent) can still be
// validated and never outlives the arena that produced it.
package ast

import "github.com/aergoio/cvmc/internal/pos"

// BlockHandle and IDHandle are non-owning references into an Arena.
// NoBlock/NoID are the "unassigned" sentinels.
type BlockHandle int32
type IDHandle int32

const (
	NoBlock BlockHandle = -1
	NoID    IDHandle    = -1
)

// Arena owns every Block and Id created during parsing. Stmt and Exp nodes
// are owned by the Block/Id that directly contains them (plain Go pointers
// are fine there since they never need to be referenced before they exist).
type Arena struct {
	blocks []*Block
	ids    []*Id
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) NewBlock(up BlockHandle) BlockHandle {
	h := BlockHandle(len(a.blocks))
	a.blocks = append(a.blocks, &Block{Num: int(h), Up: up})
	return h
}

func (a *Arena) Block(h BlockHandle) *Block {
	if h == NoBlock {
		return nil
	}
	return a.blocks[h]
}

func (a *Arena) NewID(kind IDKind, name string, p pos.Pos) IDHandle {
	h := IDHandle(len(a.ids))
	a.ids = append(a.ids, &Id{Self: h, Kind: kind, Name: name, Pos: p, Up: NoID, Blk: NoBlock, Idx: -1})
	return h
}

func (a *Arena) ID(h IDHandle) *Id {
	if h == NoID {
		return nil
	}
	return a.ids[h]
}

func (a *Arena) NumBlocks() int { return len(a.blocks) }
func (a *Arena) NumIDs() int    { return len(a.ids) }
