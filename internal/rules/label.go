package rules

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/shared"
	"gopkg.in/yaml.v3"
)

// ruleMode is the single top-level key of a label rule file.
type ruleMode int

const (
	modeAllExcept ruleMode = iota
	modeNoneExcept
)

// Labels resolves a label name to a track set by merging the directory-
// scoped rule files named .label.<name>.yml (or .yaml) found anywhere under
// the library root.
//
// Per rule file at directory D:
//   - all_except: start from every track under D, subtract each listed
//     subtree D/p.
//   - none_except: remove every track under D from the running result, add
//     back each listed subtree D/p.
//
// A null or absent exception list contributes nothing. Multiple rule files
// for one label merge in path-sorted order, which fs.WalkDir guarantees.
type Labels struct {
	root func() (fs.FS, error)
	cat  *library.Catalog
	acc  *accessor[library.Set]

	// label name -> rule file paths, built on the first lookup
	files map[string][]string
}

// NewLabels creates the label binding for one cycle. root is called at most
// once, on the first label lookup, so a script that never touches labels
// never needs the library root.
func NewLabels(root func() (fs.FS, error), cat *library.Catalog) *Labels {
	l := &Labels{root: root, cat: cat}
	l.acc = newAccessor(l.resolve)
	return l
}

// Get resolves and memoizes the track set for a label name. A label with no
// rule file anywhere under the library root fails with a wrapped
// [shared.ErrNotFound].
func (l *Labels) Get(name string) (library.Set, error) {
	return l.acc.Get(name)
}

func (l *Labels) resolve(name string) (library.Set, error) {
	fsys, err := l.root()
	if err != nil {
		return nil, err
	}
	if l.files == nil {
		if err := l.scan(fsys); err != nil {
			return nil, err
		}
	}

	matches := l.files[name]
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no file named .label.%s.yml under library root", shared.ErrNotFound, name)
	}

	result := library.NewSet()
	for _, rulePath := range matches {
		mode, except, err := loadRuleFile(fsys, rulePath)
		if err != nil {
			return nil, err
		}
		dir := path.Dir(rulePath)
		switch mode {
		case modeAllExcept:
			result.AddAll(l.cat.Under(dir))
			for _, p := range except {
				result.RemoveAll(l.cat.Under(path.Join(dir, p)))
			}
		case modeNoneExcept:
			result.RemoveAll(l.cat.Under(dir))
			for _, p := range except {
				result.AddAll(l.cat.Under(path.Join(dir, p)))
			}
		}
	}
	return result, nil
}

// scan walks the library once and indexes every rule file by label name.
func (l *Labels) scan(fsys fs.FS) error {
	files := make(map[string][]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if name, ok := labelFileName(path.Base(p)); ok {
			files[name] = append(files[name], p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan library for rule files: %w", err)
	}
	l.files = files
	return nil
}

// labelFileName extracts the label name from a rule file basename.
func labelFileName(base string) (string, bool) {
	rest, ok := strings.CutPrefix(base, ".label.")
	if !ok {
		return "", false
	}
	for _, ext := range []string{".yml", ".yaml"} {
		if name, found := strings.CutSuffix(rest, ext); found && name != "" {
			return name, true
		}
	}
	return "", false
}

// loadRuleFile parses one rule file. Anything other than exactly one of
// all_except/none_except mapping to null or a list of relative subpaths is a
// fatal malformed-input condition.
func loadRuleFile(fsys fs.FS, p string) (ruleMode, []string, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read rule file %s: %w", p, err)
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedRule, p, err)
	}
	if len(doc) != 1 {
		return 0, nil, fmt.Errorf("%w: %s: want exactly one of all_except/none_except, got %d keys", shared.ErrMalformedRule, p, len(doc))
	}

	for key, list := range doc {
		switch key {
		case "all_except":
			return modeAllExcept, list, nil
		case "none_except":
			return modeNoneExcept, list, nil
		default:
			return 0, nil, fmt.Errorf("%w: %s: unknown key %q", shared.ErrMalformedRule, p, key)
		}
	}
	panic("unreachable")
}
