package codegen

// layoutVtables assigns every contract a base offset into the function
// table: the table mirrors the function index space one-to-one (a
// constructor's slot sits unused since nothing ever call_indirects it), so
// contVtable[contID] is the absolute function index of the contract's own
// constructor -- vtable index 0 -- not its first real method. Interface
// member indices are assigned starting at 1, index 0 reserved for the
// constructor (spec.md §4.4 step 2, translate.assignInterfaceIdx), so
// interface/cross-contract calls addressing a callee as
// contVtable[contID] + TableRel land on the right entry precisely because
// the base points at the (unused) constructor slot rather than past it.
// orderFns (translate/translate.go) already placed each contract's
// non-constructor functions in interface member order right after its
// constructor.
func (g *Gen) layoutVtables() {
	var tableSize uint32

	for i, fn := range g.ir.Fns {
		wasmIdx := uint32(g.importedFns + i)
		if wasmIdx+1 > tableSize {
			tableSize = wasmIdx + 1
		}
		if fn.IsCtor {
			g.contVtable[int(fn.ContID)] = int32(wasmIdx)
			continue
		}
		g.b.AddElem(int32(wasmIdx), []uint32{wasmIdx})
	}

	if tableSize > 0 {
		g.b.SetTable(tableSize)
	}
}
