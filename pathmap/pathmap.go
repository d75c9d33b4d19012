// Aggregation of path mapping decisions.
//
// Four independent indexes are maintained: mapped paths by source, mapped
// paths by destination, passed paths, and disabled-passed paths.  A mapped
// event is upserted twice, once into each of the first two, with the
// counterpart path recorded as a reference.  The two indexes are therefore
// exact symmetric mirrors, and an entry whose reference set grows past one
// is an ambiguous mapping - the signal this package exists to surface.

package pathmap

import (
	"sort"
	"strings"

	"sblogz/sboxlog"
)

// Placeholders substituted for the session roots so that paths differing
// only by mount point aggregate together.
const (
	TargetRootTag = "<TARGET_ROOT>"
	ToolsRootTag  = "<TOOLS_ROOT>"
)

type Entry struct {
	Count      int
	Functions  map[string]bool
	Processes  map[string]bool
	References map[string]bool
}

type Index map[string]*Entry

// Config is the blacklist configuration, threaded in at construction.  The
// default blacklist holds the stat family, which is normally redundant with
// an already-logged open or access on the same path.

type Config struct {
	NoBlacklist bool
	Blacklist   []string // extends the default, comma-splitting done by the caller
}

// MT: Constant after initialization; immutable
var defaultBlacklist = []string{
	"stat", "stat64", "lstat", "lstat64",
	"fstatat", "fstatat64",
	"__xstat", "__xstat64", "__lxstat", "__lxstat64",
}

type Store struct {
	BySource Index
	ByDest   Index
	Passed   Index
	Disabled Index

	blacklist map[string]bool
}

func NewStore(cfg Config) *Store {
	st := &Store{
		BySource:  make(Index),
		ByDest:    make(Index),
		Passed:    make(Index),
		Disabled:  make(Index),
		blacklist: make(map[string]bool),
	}
	if !cfg.NoBlacklist {
		for _, fn := range defaultBlacklist {
			st.blacklist[fn] = true
		}
	}
	for _, fn := range cfg.Blacklist {
		if fn != "" {
			st.blacklist[fn] = true
		}
	}
	return st
}

// Apply aggregates one mapping event.  Root substitution uses whatever
// session variables are set at this point in the stream.

func (st *Store) Apply(s *sboxlog.Session, ident sboxlog.Identity, ev sboxlog.Event) {
	if st.blacklist[ev.Function] {
		return
	}
	switch ev.Kind {
	case sboxlog.EvMapped:
		src := Substitute(ev.Path, s)
		dst := Substitute(ev.Dest, s)
		st.BySource.upsert(src, ev.Function, ident.Name, dst)
		st.ByDest.upsert(dst, ev.Function, ident.Name, src)
	case sboxlog.EvPassed:
		st.Passed.upsert(Substitute(ev.Path, s), ev.Function, ident.Name, "")
	case sboxlog.EvDisabledPassed:
		st.Disabled.upsert(Substitute(ev.Path, s), ev.Function, ident.Name, "")
	}
}

func (ix Index) upsert(path, function, process, reference string) {
	e, found := ix[path]
	if !found {
		e = &Entry{
			Functions:  make(map[string]bool),
			Processes:  make(map[string]bool),
			References: make(map[string]bool),
		}
		ix[path] = e
	}
	e.Count++
	e.Functions[function] = true
	e.Processes[process] = true
	if reference != "" {
		e.References[reference] = true
	}
}

// Substitute rewrites a literal leading root prefix to its symbolic tag.

func Substitute(path string, s *sboxlog.Session) string {
	if s.TargetRoot != "" && strings.HasPrefix(path, s.TargetRoot) {
		return TargetRootTag + path[len(s.TargetRoot):]
	}
	if s.ToolsRoot != "" && strings.HasPrefix(path, s.ToolsRoot) {
		return ToolsRootTag + path[len(s.ToolsRoot):]
	}
	return path
}

// Ambiguous returns the paths in the index whose reference sets have more
// than one member, sorted.

func (ix Index) Ambiguous() []string {
	paths := make([]string, 0)
	for path, e := range ix {
		if len(e.References) > 1 {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// SortedPaths returns all keys of the index, sorted.

func (ix Index) SortedPaths() []string {
	paths := make([]string, 0, len(ix))
	for path := range ix {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
