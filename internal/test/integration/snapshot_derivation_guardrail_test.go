//go:build integration
// +build integration

package integration

import (
	"fmt"
	"go/ast"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const (
	statePkgPath  = "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
	enginePkgPath = "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/engine"
)

// TestSnapshotDerivationStaysInEngine enforces the state package contract:
// Assignment.With and Assignment.Without are reserved for the transition
// engine. Any other caller would bypass precondition checking and could
// fabricate snapshots the invariant checker never admitted.
func TestSnapshotDerivationStaysInEngine(t *testing.T) {
	config := &packages.Config{
		Mode:  packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps,
		Tests: false,
		Dir:   integrationRepoRoot(t),
	}

	statePkg := loadSinglePackage(t, config, "./internal/casting/state")
	assignmentObj := statePkg.Types.Scope().Lookup("Assignment")
	if assignmentObj == nil {
		t.Fatal("state.Assignment not found")
	}
	assignmentType := assignmentObj.Type()

	targetPkgs, err := packages.Load(config, "./...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(targetPkgs) > 0 {
		t.Fatal("package load errors")
	}

	derivationMethods := map[string]struct{}{
		"With":    {},
		"Without": {},
	}
	allowedPkgs := map[string]struct{}{
		statePkgPath:  {},
		enginePkgPath: {},
	}

	var violations []string
	for _, pkg := range targetPkgs {
		if _, ok := allowedPkgs[pkg.PkgPath]; ok {
			continue
		}
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(node ast.Node) bool {
				call, ok := node.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				if _, ok := derivationMethods[sel.Sel.Name]; !ok {
					return true
				}
				receiverType := pkg.TypesInfo.TypeOf(sel.X)
				if receiverType == nil || !types.Identical(receiverType, assignmentType) {
					return true
				}
				position := pkg.Fset.Position(sel.Pos())
				violations = append(violations, fmt.Sprintf("%s: %s calls Assignment.%s", position, pkg.PkgPath, sel.Sel.Name))
				return true
			})
		}
	}

	if len(violations) > 0 {
		t.Fatalf("snapshot derivation outside the transition engine:\n- %s", strings.Join(violations, "\n- "))
	}
}

// TestRunStoresAlsoRecordTelemetry pins the archive store contract the CLI
// relies on: every RunStore implementation under internal/storage also
// accepts telemetry events, so one handle serves both concerns.
func TestRunStoresAlsoRecordTelemetry(t *testing.T) {
	config := &packages.Config{
		Mode:  packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps,
		Tests: false,
		Dir:   integrationRepoRoot(t),
	}

	storagePkg := loadSinglePackage(t, config, "./internal/storage")
	runStore := lookupInterface(t, storagePkg, "RunStore")
	telemetryStore := lookupInterface(t, storagePkg, "TelemetryStore")

	implPkgs, err := packages.Load(config, "./internal/storage/...")
	if err != nil {
		t.Fatalf("load storage implementations: %v", err)
	}
	if packages.PrintErrors(implPkgs) > 0 {
		t.Fatal("storage implementation load errors")
	}

	checked := 0
	for _, pkg := range implPkgs {
		if pkg.PkgPath == storagePkg.PkgPath {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() {
				continue
			}
			ptr := types.NewPointer(obj.Type())
			if !types.Implements(ptr, runStore) {
				continue
			}
			checked++
			if !types.Implements(ptr, telemetryStore) {
				t.Errorf("%s.%s implements RunStore but not TelemetryStore", pkg.PkgPath, name)
			}
		}
	}
	if checked == 0 {
		t.Fatal("no RunStore implementations found under internal/storage")
	}
}

func loadSinglePackage(t *testing.T, config *packages.Config, pattern string) *packages.Package {
	t.Helper()
	pkgs, err := packages.Load(config, pattern)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("%s load errors", pattern)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected one package for %s, got %d", pattern, len(pkgs))
	}
	return pkgs[0]
}

func lookupInterface(t *testing.T, pkg *packages.Package, name string) *types.Interface {
	t.Helper()
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		t.Fatalf("interface %s not found", name)
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		t.Fatalf("type %s is not an interface", name)
	}
	return iface
}

func integrationRepoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get working dir: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			t.Fatal("go.mod not found")
		}
		wd = parent
	}
}
