package access

import (
	"fmt"

	"fortio.org/safecast"

	"ompscope/internal/ast"
	"ompscope/internal/symbols"
)

type collector struct {
	b     *ast.Builder
	names ast.SymbolNamer
	info  *Info
	loc   int
}

// Collect gathers the variable accesses of the tree rooted at root. On an
// assignment the right-hand side is read before the target is written; a
// loop writes and then reads its induction variable before its bounds are
// evaluated.
func Collect(b *ast.Builder, names ast.SymbolNamer, root ast.StmtID) (*Info, error) {
	c := &collector{b: b, names: names, info: newInfo()}
	if err := c.stmt(root); err != nil {
		return nil, err
	}
	return c.info, nil
}

func (c *collector) location() (uint32, error) {
	loc, err := safecast.Conv[uint32](c.loc)
	if err != nil {
		return 0, fmt.Errorf("access location overflow: %w", err)
	}
	return loc, nil
}

func (c *collector) stmt(id ast.StmtID) error {
	c.loc++
	kind, ok := c.b.Stmts.Kind(id)
	if !ok {
		return fmt.Errorf("collect: unknown statement %d", id)
	}
	switch kind {
	case ast.StmtAssign:
		data, _ := c.b.Stmts.Assign(id)
		if err := c.reads(id, data.Value); err != nil {
			return err
		}
		return c.write(id, data.Target, Write)
	case ast.StmtLoop:
		data, _ := c.b.Stmts.Loop(id)
		if err := c.loopVar(id, data.Var); err != nil {
			return err
		}
		for _, e := range []ast.ExprID{data.Start, data.Stop, data.Step} {
			if err := c.reads(id, e); err != nil {
				return err
			}
		}
	case ast.StmtIf:
		data, _ := c.b.Stmts.If(id)
		if err := c.reads(id, data.Cond); err != nil {
			return err
		}
	case ast.StmtCall:
		data, _ := c.b.Stmts.Call(id)
		for _, arg := range data.Args {
			if c.b.Exprs.IsReference(arg) {
				if err := c.write(id, arg, ReadWrite); err != nil {
					return err
				}
				continue
			}
			if err := c.reads(id, arg); err != nil {
				return err
			}
		}
	}
	for _, child := range c.b.Stmts.Children(id) {
		if err := c.stmt(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) loopVar(id ast.StmtID, sym symbols.SymbolID) error {
	loc, err := c.location()
	if err != nil {
		return err
	}
	sig := New(c.names.Name(sym))
	c.info.add(sig, sym, Access{Kind: Write, Stmt: id, Location: loc})
	c.info.add(sig, sym, Access{Kind: Read, Stmt: id, Location: loc})
	return nil
}

func (c *collector) record(id ast.StmtID, ref ast.ExprID, kind Kind) error {
	sig, indices, err := Of(c.b.Exprs, c.names, ref)
	if err != nil {
		return err
	}
	sym, _ := c.b.Exprs.Symbol(ref)
	loc, err := c.location()
	if err != nil {
		return err
	}
	indexed := false
	for _, l := range indices {
		if len(l) > 0 {
			indexed = true
			break
		}
	}
	c.info.add(sig, sym, Access{Kind: kind, Stmt: id, Expr: ref, Indexed: indexed, Location: loc})
	return nil
}

// reads records every reference under e, subscripts included.
func (c *collector) reads(id ast.StmtID, e ast.ExprID) error {
	for _, ref := range c.b.Exprs.References(e) {
		if err := c.record(id, ref, Read); err != nil {
			return err
		}
	}
	return nil
}

// write records target as written and its subscripts as read.
func (c *collector) write(id ast.StmtID, target ast.ExprID, kind Kind) error {
	if err := c.record(id, target, kind); err != nil {
		return err
	}
	for _, sub := range c.b.Exprs.Children(target) {
		if err := c.reads(id, sub); err != nil {
			return err
		}
	}
	return nil
}
