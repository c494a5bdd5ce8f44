package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "countdown/internal/modules/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

// importsUnder calls visit for every countdown import of every non-test Go
// file below root.
func importsUnder(t *testing.T, root string, visit func(file, importPath string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if strings.HasPrefix(importPath, "countdown/") {
				visit(filepath.ToSlash(path), importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func TestModuleLayerImports(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "modules"), func(file, importPath string) {
		module, layer := locate(file)
		if module == "" || layer == "" || !strings.HasPrefix(importPath, modulePrefix) {
			return
		}
		if reason := layerViolation(module, layer, importPath); reason != "" {
			t.Errorf("%s (%s) imports %s: %s", file, layer, importPath, reason)
		}
	})
}

// The views talk to modules only through their public shapes; wiring lives in
// bootstrap.
func TestUIImportsOnlyPublicShapes(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "ui"), func(file, importPath string) {
		if !strings.HasPrefix(importPath, modulePrefix) {
			return
		}
		if layer := layerOf(importPath); layer != "domain" && layer != "dto" {
			t.Errorf("%s imports %s: views may use module domain and dto only", file, importPath)
		}
	})
}

func TestCommandsGoThroughBootstrap(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "..", "cmd"), func(file, importPath string) {
		if !strings.HasPrefix(importPath, modulePrefix) {
			return
		}
		if layer := layerOf(importPath); layer != "domain" && layer != "dto" {
			t.Errorf("%s imports %s: commands reach modules through bootstrap", file, importPath)
		}
	})
}

func locate(path string) (module, layer string) {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			module = parts[i+1]
			break
		}
	}
	return module, layerOf(path + "/")
}

func layerOf(path string) string {
	for _, layer := range layers {
		if strings.Contains(path, "/"+layer+"/") || strings.HasSuffix(path, "/"+layer) {
			return layer
		}
	}
	return ""
}

func layerViolation(module, layer, importPath string) string {
	target := layerOf(importPath)
	if !strings.HasPrefix(importPath, modulePrefix+module+"/") {
		switch target {
		case "domain", "dto", "port/in":
		default:
			return "other modules are reachable through domain, dto and port/in only"
		}
	}
	switch layer {
	case "adapter/in":
		if target != "port/in" && target != "dto" {
			return "inbound adapters depend on port/in and dto only"
		}
	case "usecase":
		if strings.HasPrefix(target, "adapter/") {
			return "use-cases must not know adapters"
		}
	case "service":
		if strings.HasPrefix(target, "adapter/") || target == "usecase" {
			return "services must not know adapters or use-cases"
		}
	case "domain":
		if strings.HasPrefix(target, "adapter/") || target == "usecase" || target == "service" {
			return "domain depends on nothing above it"
		}
	}
	return ""
}
