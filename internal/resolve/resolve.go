// Package resolve implements the Symbol Resolver (spec.md §4.2): unqualified
// lookup by walking Block.Up chains, and qualified lookup through the
// member list of a struct/contract/interface.
package resolve

import "github.com/aergoio/cvmc/internal/ast"

// BlkSearchID walks from blk upward through Up links, at each level
// searching declared Ids for a name match, restricted to declarations whose
// defining block number is <= num (spec.md §4.2). Top-level declarations
// live in block 0 and so are always visible regardless of num, which is how
// forward references to top-level functions/contracts are permitted while
// forward references to locals are not.
//
// On a successful match, the bound id's IsUsed is set true. Returns nil if
// no declaration in scope matches name.
func BlkSearchID(a *ast.Arena, blk *ast.Block, name string, num int) *ast.Id {
	for b := blk; b != nil; b = a.Block(b.Up) {
		if b.Num > num {
			continue
		}
		if id := searchNames(a, b.Ids, name); id != nil {
			id.IsUsed = true
			return id
		}
	}
	return nil
}

// IDSearchFld performs qualified lookup: name is searched among the members
// of the struct/contract/interface referenced by qual. sameContract permits
// resolving Private members; it must be true only when the expression doing
// the lookup lives inside the same contract instance as qual.
func IDSearchFld(a *ast.Arena, qual *ast.Id, name string, sameContract bool) *ast.Id {
	members := memberIDs(a, qual)
	id := searchNames(a, members, name)
	if id == nil {
		return nil
	}
	if id.Private && !sameContract {
		return nil
	}
	id.IsUsed = true
	return id
}

func searchNames(a *ast.Arena, ids []ast.IDHandle, name string) *ast.Id {
	for _, h := range ids {
		id := a.ID(h)
		if id.Name == name {
			return id
		}
	}
	return nil
}

// memberIDs returns qual's declaration list regardless of whether qual is a
// struct (whose fields are stored directly), or a contract/interface (whose
// members live in a Block).
func memberIDs(a *ast.Arena, qual *ast.Id) []ast.IDHandle {
	switch qual.Kind {
	case ast.StructID:
		if qual.Struct == nil {
			return nil
		}
		return qual.Struct.Fields
	case ast.ContID:
		if qual.Cont == nil {
			return nil
		}
		if b := a.Block(qual.Cont.Body); b != nil {
			return b.Ids
		}
	case ast.ItfID:
		if qual.Itf == nil {
			return nil
		}
		if b := a.Block(qual.Itf.Body); b != nil {
			return b.Ids
		}
	}
	return nil
}
