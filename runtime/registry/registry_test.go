package registry_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/eval"
	"github.com/aledsdavies/patternscript/runtime/registry"
)

func sampleHead() *ast.Head {
	return ast.NewHead().
		AddPath(&ast.Path{
			Name:   "circle",
			Params: []string{"r"},
			Fields: ast.Fields{
				ast.Def("x", ast.Bin(ast.OpMul, ast.Ref("r"), ast.Call("cos", ast.Ref("t")))),
				ast.Def("y", ast.Bin(ast.OpMul, ast.Ref("r"), ast.Call("sin", ast.Ref("t")))),
			},
		}).
		AddPattern(&ast.Pattern{Name: "spiral", Body: ast.NewBlock(nil)}).
		AddPattern(&ast.Pattern{Name: "wave", Body: ast.NewBlock(nil)}).
		AddBullet(&ast.Bullet{Name: "small", Fields: ast.Fields{ast.Def("hitbox", ast.Vec(ast.Int(4), ast.Int(4)))}})
}

func TestNew_Lookups(t *testing.T) {
	head := sampleHead()
	head.Constants = ast.Fields{ast.Def("speed", ast.Int(3))}

	reg, err := registry.New(head)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := reg.Path("circle"); !ok {
		t.Error("circle path not registered")
	}
	if _, ok := reg.Bullet("small"); !ok {
		t.Error("small bullet not registered")
	}
	if diff := cmp.Diff([]string{"spiral", "wave"}, reg.Names(registry.KindPattern)); diff != "" {
		t.Errorf("pattern names mismatch (-want +got):\n%s", diff)
	}

	v, err := eval.Evaluate(ast.Ref("speed"), reg.Globals())
	if err != nil {
		t.Fatalf("global lookup failed: %v", err)
	}
	if v != eval.Int(3) {
		t.Errorf("speed = %v, want 3", v)
	}
}

func TestLookup_NotFoundSuggests(t *testing.T) {
	reg, err := registry.New(sampleHead())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = reg.LookupPattern("spirl")
	var nf *registry.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	want := &registry.NotFoundError{Kind: registry.KindPattern, Name: "spirl", Suggestion: "did you mean spiral?"}
	if diff := cmp.Diff(want, nf); diff != "" {
		t.Errorf("NotFoundError mismatch (-want +got):\n%s", diff)
	}

	if _, err := reg.LookupBullet("huge"); err == nil {
		t.Error("expected error for unknown bullet")
	}
	if _, err := reg.LookupPath("circle"); err != nil {
		t.Errorf("LookupPath(circle) failed: %v", err)
	}
}

func TestNew_RejectsMalformedPaths(t *testing.T) {
	tests := []struct {
		name string
		path *ast.Path
	}{
		{
			name: "missing y",
			path: &ast.Path{Name: "line", Fields: ast.Fields{ast.Def("x", ast.Ref("t"))}},
		},
		{
			name: "duplicate parameter",
			path: &ast.Path{
				Name:   "line",
				Params: []string{"a", "a"},
				Fields: ast.Fields{ast.Def("x", ast.Ref("t")), ast.Def("y", ast.Int(0))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.New(ast.NewHead().AddPath(tt.path))
			var pe *registry.PathError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *PathError", err)
			}
			if pe.Path != "line" {
				t.Errorf("Path = %q, want line", pe.Path)
			}
		})
	}
}

func TestNew_NilHeadIsEmpty(t *testing.T) {
	reg, err := registry.New(nil)
	if err != nil {
		t.Fatalf("New(nil) failed: %v", err)
	}
	if n := len(reg.Names(registry.KindPath)); n != 0 {
		t.Errorf("expected no paths, got %d", n)
	}
}
