// Package ruleset loads the rule sets evaluated by the scoring engine.
//
// Six rule sets are embedded in the binary. A directory of YAML files can be
// layered on top to replace or extend them.
package ruleset

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/build-flow-labs/apiscore/lint"
)

// Names of the embedded rule sets.
const (
	Conformance          = "conformance"
	DeveloperExperience  = "dx"
	MockingReadiness     = "mocking-readiness"
	DesignPatternRestful = "design-pattern-restful"
	OWASP                = "owasp"
	URLVersioning        = "url-versioning"
)

//go:embed builtin/*.yaml
var builtinFiles embed.FS

// LoadError reports a rule set that cannot be read, parsed or compiled.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading rule set %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader returns the definition of a named rule set.
type Loader interface {
	Load(name string) (*lint.RuleSet, error)
}

// Lister enumerates the rule sets a loader can provide.
type Lister interface {
	List() ([]Info, error)
}

// Info summarizes a rule set.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rules       int    `json:"rules"`
}

// FS loads rule sets stored as <name>.yaml files at the root of a file system.
type FS struct {
	fsys fs.FS
}

// NewFS returns a loader reading from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Builtin returns the loader for the embedded rule sets.
func Builtin() *FS {
	sub, err := fs.Sub(builtinFiles, "builtin")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return NewFS(sub)
}

// Dir returns a loader reading rule sets from a directory on disk.
func Dir(dir string) *FS {
	return NewFS(os.DirFS(dir))
}

// Load reads, decodes and validates a rule set. Unknown keys are rejected.
// A missing file is reported as a *LoadError wrapping fs.ErrNotExist.
func (f *FS) Load(name string) (*lint.RuleSet, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return nil, &LoadError{Name: name, Err: errors.New("invalid rule set name")}
	}

	data, err := fs.ReadFile(f.fsys, name+".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		data, err = fs.ReadFile(f.fsys, name+".yml")
	}
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}

	rs, err := decode(data)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	if rs.Name == "" {
		rs.Name = name
	}
	if err := rs.Validate(); err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	return rs, nil
}

// List summarizes every rule set file, sorted by name.
func (f *FS) List() ([]Info, error) {
	entries, err := fs.ReadDir(f.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing rule sets: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		rs, err := f.Load(strings.TrimSuffix(e.Name(), ext))
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{Name: rs.Name, Description: rs.Description, Rules: len(rs.Rules)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func decode(data []byte) (*lint.RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rs lint.RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return &rs, nil
}

// Compile loads a rule set and builds a fresh engine for it. Both load and
// compile failures are reported as *LoadError.
func Compile(l Loader, name string, opts ...lint.Option) (*lint.Engine, error) {
	rs, err := l.Load(name)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &LoadError{Name: name, Err: err}
	}
	e, err := lint.New(rs, opts...)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	return e, nil
}
