package paramname

import (
	"fmt"
	"go/types"
	"reflect"
	"sync"

	"golang.org/x/tools/go/packages"
)

// LoadMode is what Source needs from go/packages: declarations with their signatures.
const LoadMode = packages.NeedName | packages.NeedTypes

// Source reads parameter names from the declaration of the function, loading
// its package with go/packages. Loaded packages are kept for the life of the Source.
type Source struct {
	// Dir is the directory go/packages runs in; empty means the current directory.
	Dir string

	mu   sync.Mutex
	pkgs map[string]*types.Package
	errs map[string]error
}

// NewSource returns a Source running in dir.
func NewSource(dir string) *Source {
	return &Source{
		Dir:  dir,
		pkgs: make(map[string]*types.Package),
		errs: make(map[string]error),
	}
}

func (s *Source) ParameterNames(fn reflect.Value) ([]string, error) {
	if err := checkFunc(fn); err != nil {
		return nil, err
	}

	pkgPath, ident, ok := SplitFuncName(FuncName(fn))
	if !ok || pkgPath == "main" {
		return nil, ErrNotFound
	}

	pkg, err := s.load(pkgPath)
	if err != nil {
		return nil, err
	}

	obj, ok := pkg.Scope().Lookup(ident).(*types.Func)
	if !ok {
		return nil, ErrNotFound
	}

	params := obj.Type().(*types.Signature).Params()
	names := make([]string, params.Len())

	for i := 0; i < params.Len(); i++ {
		names[i] = params.At(i).Name()
	}

	if err := validNames(fn, names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return names, nil
}

// load returns the type-checked package, loading it on first use.
// Load failures are remembered so a broken package is not loaded again.
func (s *Source) load(pkgPath string) (*types.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pkg, ok := s.pkgs[pkgPath]; ok {
		return pkg, nil
	}

	if err, ok := s.errs[pkgPath]; ok {
		return nil, err
	}

	pkg, err := loadPackage(s.Dir, pkgPath)
	if err != nil {
		s.errs[pkgPath] = err
		return nil, err
	}

	s.pkgs[pkgPath] = pkg

	return pkg, nil
}

func loadPackage(dir, pkgPath string) (*types.Package, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", pkgPath, err)
	}

	if len(pkgs) != 1 {
		return nil, fmt.Errorf("package %s: %w", pkgPath, ErrNotFound)
	}

	if len(pkgs[0].Errors) > 0 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("package %s: %w: %v", pkgPath, ErrNotFound, pkgs[0].Errors)
	}

	return pkgs[0].Types, nil
}
