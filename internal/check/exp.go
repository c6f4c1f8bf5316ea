package check

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/resolve"
)

func (d *Driver) checkExp(e *ast.Exp) {
	if e.Meta == nil {
		e.Meta = &meta.Meta{Pos: e.Pos}
	}
	switch e.Kind {
	case ast.ExpLit:
		d.checkLit(e)
	case ast.ExpID:
		d.checkIDRef(e)
	case ast.ExpLocal, ast.ExpGlobal:
		// Already bound by a prior pass (e.g. synthesized during translate);
		// nothing further for check to resolve.
	case ast.ExpBinary:
		d.checkBinary(e)
	case ast.ExpUnary:
		d.checkUnary(e)
	case ast.ExpCall:
		d.checkCall(e)
	case ast.ExpTuple:
		d.checkTuple(e)
	case ast.ExpField:
		d.checkField(e)
	case ast.ExpIndex:
		d.checkIndex(e)
	default:
		panic("check: unhandled expression kind")
	}
}

func (d *Driver) checkLit(e *ast.Exp) {
	switch e.LitKind {
	case ast.LitBool:
		meta.SetBool(e.Meta)
	case ast.LitInt:
		meta.SetInt32(e.Meta)
	case ast.LitFloat:
		*e.Meta = meta.Meta{Type: meta.Fpoint64, Size: 8}
	case ast.LitString:
		*e.Meta = meta.Meta{Type: meta.String, Size: 4}
	}
}

func (d *Driver) checkIDRef(e *ast.Exp) {
	id := resolve.BlkSearchID(d.arena, d.blk, e.Name, d.blk.Num)
	if id == nil {
		d.errs.Push(errlist.UndefinedID, e.Pos, "undefined identifier %q", e.Name)
		return
	}
	e.ID = id.Self
	meta.Copy(e.Meta, id.Meta)
}

func (d *Driver) checkBinary(e *ast.Exp) {
	d.checkExp(e.L)
	d.checkExp(e.R)

	switch e.BinOp {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !comparableOperands(e.L.Meta, e.R.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "cannot compare %s with %s", meta.ToStr(e.L.Meta), meta.ToStr(e.R.Meta))
		}
		meta.SetBool(e.Meta)
	case ast.OpLogAnd, ast.OpLogOr:
		if !meta.IsBool(e.L.Meta) || !meta.IsBool(e.R.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "logical operator requires bool operands")
		}
		meta.SetBool(e.Meta)
	default:
		if meta.IsString(e.L.Meta) && meta.IsString(e.R.Meta) && e.BinOp == ast.OpAdd {
			*e.Meta = meta.Meta{Type: meta.String, Size: 4}
			return
		}
		if !meta.IsNumeric(e.L.Meta) || !meta.IsNumeric(e.R.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "arithmetic operator requires numeric operands, got %s and %s",
				meta.ToStr(e.L.Meta), meta.ToStr(e.R.Meta))
			meta.Copy(e.Meta, e.L.Meta)
			return
		}
		// Operands of different widths within the same signedness family
		// are accepted and the wider operand's type is the result type;
		// no conversion node is added to the narrower operand.
		if meta.IsInteger(e.L.Meta) && meta.IsInteger(e.R.Meta) && meta.IsSigned(e.L.Meta) != meta.IsSigned(e.R.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "cannot mix signed and unsigned operands without an explicit cast")
		}
		if e.L.Meta.Size >= e.R.Meta.Size {
			meta.Copy(e.Meta, e.L.Meta)
		} else {
			meta.Copy(e.Meta, e.R.Meta)
		}
	}
}

func comparableOperands(a, b *meta.Meta) bool {
	return meta.IsComparable(a) && meta.IsComparable(b)
}

func (d *Driver) checkUnary(e *ast.Exp) {
	d.checkExp(e.L)
	switch e.UnOp {
	case ast.OpNot:
		if !meta.IsBool(e.L.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "! requires a bool operand")
		}
		meta.SetBool(e.Meta)
	case ast.OpNeg, ast.OpBitNot:
		if !meta.IsNumeric(e.L.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Pos, "unary operator requires a numeric operand")
		}
		meta.Copy(e.Meta, e.L.Meta)
	}
}

func (d *Driver) checkCall(e *ast.Exp) {
	for _, a := range e.CallArgs {
		d.checkExp(a)
	}

	var callee *ast.Id
	if e.Recv != nil {
		d.checkExp(e.Recv)
		if !meta.IsObject(e.Recv.Meta) && !meta.IsInterface(e.Recv.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.Recv.Pos, "method call on non-object receiver")
			return
		}
		recvID := d.findTopLevelByMetaName(e.Recv.Meta.Name)
		if recvID == nil {
			d.errs.Push(errlist.UndefinedType, e.Recv.Pos, "undefined type %q", e.Recv.Meta.Name)
			return
		}
		callee = resolve.IDSearchFld(d.arena, recvID, e.Name, recvID.Self == d.contID)
	} else {
		callee = resolve.BlkSearchID(d.arena, d.blk, e.Name, d.blk.Num)
	}

	if callee == nil || callee.Kind != ast.FnID {
		d.errs.Push(errlist.UndefinedID, e.Pos, "undefined function %q", e.Name)
		return
	}
	e.ID = callee.Self
	if callee.Fn != nil && callee.Fn.Import != "" {
		e.QName = callee.Fn.Import
	}

	if len(callee.Fn.Params) != len(e.CallArgs) {
		d.errs.Push(errlist.ArityMismatch, e.Pos, "%q expects %d argument(s), got %d", e.Name, len(callee.Fn.Params), len(e.CallArgs))
	} else {
		for i, h := range callee.Fn.Params {
			p := d.arena.ID(h)
			if !assignable(p.Meta, e.CallArgs[i].Meta) {
				d.errs.Push(errlist.TypeMismatch, e.CallArgs[i].Pos, "argument %d: cannot convert %s to %s",
					i, meta.ToStr(e.CallArgs[i].Meta), meta.ToStr(p.Meta))
			}
		}
	}

	switch len(callee.Fn.Results) {
	case 0:
		meta.SetVoid(e.Meta)
	case 1:
		meta.Copy(e.Meta, callee.Fn.Results[0])
	default:
		e.Meta.Type = meta.Tuple
		e.Meta.Elems = callee.Fn.Results
	}
}

func (d *Driver) findTopLevelByMetaName(name string) *ast.Id {
	if id := d.findTopLevel(name, ast.ContID); id != nil {
		return id
	}
	if id := d.findTopLevel(name, ast.ItfID); id != nil {
		return id
	}
	return d.findTopLevel(name, ast.StructID)
}

func (d *Driver) checkTuple(e *ast.Exp) {
	elems := make([]*meta.Meta, len(e.TupElems))
	for i, elem := range e.TupElems {
		d.checkExp(elem)
		elems[i] = elem.Meta
	}
	e.Meta.Type = meta.Tuple
	e.Meta.Elems = elems
}

func (d *Driver) checkField(e *ast.Exp) {
	d.checkExp(e.FieldRecv)
	if !meta.IsObject(e.FieldRecv.Meta) {
		d.errs.Push(errlist.TypeMismatch, e.FieldRecv.Pos, "field access on non-object value")
		return
	}
	recvID := d.findTopLevelByMetaName(e.FieldRecv.Meta.Name)
	if recvID == nil {
		d.errs.Push(errlist.UndefinedType, e.FieldRecv.Pos, "undefined type %q", e.FieldRecv.Meta.Name)
		return
	}
	field := resolve.IDSearchFld(d.arena, recvID, e.FieldName, recvID.Self == d.contID)
	if field == nil {
		d.errs.Push(errlist.UndefinedID, e.Pos, "%q has no member %q", e.FieldRecv.Meta.Name, e.FieldName)
		return
	}
	e.ID = field.Self
	meta.Copy(e.Meta, field.Meta)
}

func (d *Driver) checkIndex(e *ast.Exp) {
	d.checkExp(e.IdxRecv)
	d.checkExp(e.IdxKey)

	switch {
	case meta.IsArray(e.IdxRecv.Meta):
		if !meta.IsInteger(e.IdxKey.Meta) {
			d.errs.Push(errlist.TypeMismatch, e.IdxKey.Pos, "array index must be an integer")
		}
		if len(e.IdxRecv.Meta.Elems) == 1 {
			meta.Copy(e.Meta, e.IdxRecv.Meta.Elems[0])
		}
	case meta.IsMap(e.IdxRecv.Meta):
		if len(e.IdxRecv.Meta.Elems) == 2 {
			k, v := e.IdxRecv.Meta.Elems[0], e.IdxRecv.Meta.Elems[1]
			if !assignable(k, e.IdxKey.Meta) {
				d.errs.Push(errlist.TypeMismatch, e.IdxKey.Pos, "map key type mismatch: expected %s, got %s", meta.ToStr(k), meta.ToStr(e.IdxKey.Meta))
			}
			meta.Copy(e.Meta, v)
		}
	default:
		d.errs.Push(errlist.TypeMismatch, e.IdxRecv.Pos, "indexing requires an array or map, got %s", meta.ToStr(e.IdxRecv.Meta))
	}
}
