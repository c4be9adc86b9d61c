// Package layout implements the PreEmit pass: for every class, assign
// field offsets and vtable slots bottom-up through the extends chain,
// prefix method labels with "ClassName.", and cache the resulting
// object and vtable byte sizes (spec §4.2).
package layout

import (
	"sort"

	"github.com/pkg/errors"

	"decafc/ast"
	"decafc/scope"
	"decafc/tac"
)

// Table is PreEmit's output: the final, slot-ordered method-label list
// per class, for GenVTable to consume. Field offsets and the cached
// byte sizes are written directly onto the ClassDecl/VarDecl/FnDecl
// nodes themselves, since spec §3 already gives them fields for that;
// the vtable label ordering has nowhere to live on the AST, so it
// lives here instead.
type Table struct {
	labels map[string][]string
}

// Methods returns className's vtable in slot order, ready to hand to
// CodeGenerator.GenVTable.
func (t *Table) Methods(className string) []string {
	return t.labels[className]
}

// PreEmit computes layout for every class declared in prog. st must
// already be populated by scope.BuildScopes; PreEmit itself performs
// no name resolution, only inheritance-aware offset assignment.
func PreEmit(prog *ast.Program, st *scope.Table) *Table {
	t := &Table{labels: make(map[string][]string)}
	slots := make(map[string]map[string]int)

	for _, c := range sortedByDepth(collectClasses(prog), st) {
		var baseObjectBytes, baseVTableBytes int
		var baseLabels []string
		baseSlots := map[string]int{}
		if c.Extends != "" {
			if base, ok := st.ClassDecl(c.Extends); ok {
				baseObjectBytes = base.ObjectBytes
				baseVTableBytes = base.VTableBytes
				baseLabels = t.labels[base.Name()]
				baseSlots = slots[base.Name()]
			}
		}

		memOffset := tac.OffsetToFirstField + baseObjectBytes
		vtblOffset := baseVTableBytes
		myLabels := append([]string(nil), baseLabels...)
		mySlots := make(map[string]int, len(baseSlots))
		for name, slot := range baseSlots {
			mySlots[name] = slot
		}

		for _, m := range c.Members {
			switch decl := m.(type) {
			case *ast.VarDecl:
				decl.FieldOffset = memOffset
				memOffset += tac.VarSize

			case *ast.FnDecl:
				decl.IsMethod = true
				decl.Label = c.Name() + "." + decl.Ident.Value
				simple := decl.Ident.Value
				if slot, overriding := mySlots[simple]; overriding {
					decl.VTableOffset = slot
					myLabels[slot/tac.VarSize] = decl.Label
				} else {
					slot := vtblOffset
					mySlots[simple] = slot
					decl.VTableOffset = slot
					myLabels = append(myLabels, decl.Label)
					vtblOffset += tac.VarSize
				}
			}
		}

		c.ObjectBytes = memOffset - tac.OffsetToFirstField
		c.VTableBytes = vtblOffset
		t.labels[c.Name()] = myLabels
		slots[c.Name()] = mySlots
	}

	return t
}

func collectClasses(prog *ast.Program) []*ast.ClassDecl {
	var classes []*ast.ClassDecl
	for _, d := range prog.Decls {
		if c, ok := d.(*ast.ClassDecl); ok {
			classes = append(classes, c)
		}
	}
	return classes
}

// sortedByDepth orders classes so a superclass is always processed
// before any of its subclasses, the precondition PreEmit's single pass
// relies on (spec §4.2 "bottom-up by inheritance", spec §5).
func sortedByDepth(classes []*ast.ClassDecl, st *scope.Table) []*ast.ClassDecl {
	depth := make(map[string]int, len(classes))
	for _, c := range classes {
		depth[c.Name()] = inheritanceDepth(c, st)
	}

	sorted := make([]*ast.ClassDecl, len(classes))
	copy(sorted, classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return depth[sorted[i].Name()] < depth[sorted[j].Name()]
	})
	return sorted
}

func inheritanceDepth(c *ast.ClassDecl, st *scope.Table) int {
	depth := 0
	visited := map[string]bool{c.Name(): true}
	cur := c
	for cur.Extends != "" {
		if visited[cur.Extends] {
			panic(errors.Errorf("layout: inheritance cycle detected at class %s", cur.Extends))
		}
		base, ok := st.ClassDecl(cur.Extends)
		if !ok {
			break
		}
		visited[cur.Extends] = true
		cur = base
		depth++
	}
	return depth
}
