package ruleset

import (
	"errors"
	"io/fs"
	"sort"

	"github.com/build-flow-labs/apiscore/lint"
)

// Layered consults loaders in order and returns the first rule set found.
// A loader that does not have the rule set is skipped; any other failure
// stops the search.
type Layered struct {
	loaders []Loader
}

// NewLayered stacks loaders, highest priority first.
func NewLayered(loaders ...Loader) *Layered {
	return &Layered{loaders: loaders}
}

func (l *Layered) Load(name string) (*lint.RuleSet, error) {
	for _, ld := range l.loaders {
		rs, err := ld.Load(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return rs, err
	}
	return nil, &LoadError{Name: name, Err: fs.ErrNotExist}
}

// List merges the listings of every loader that can list. Higher priority
// loaders shadow lower ones with the same name.
func (l *Layered) List() ([]Info, error) {
	seen := make(map[string]bool)
	var infos []Info
	for _, ld := range l.loaders {
		lister, ok := ld.(Lister)
		if !ok {
			continue
		}
		list, err := lister.List()
		if err != nil {
			return nil, err
		}
		for _, info := range list {
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
