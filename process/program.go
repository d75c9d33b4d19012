package process

// A Program groups process instances by their (execution policy, binary)
// pair.  Entries are created on the first start event carrying the identity
// and are never deleted; Executed holds the direct call graph - the set of
// program identities this program has started, not a counted edge.

type ProgramKey struct {
	Policy string
	Binary string
}

func (k ProgramKey) Empty() bool {
	return k.Policy == "" && k.Binary == ""
}

type Program struct {
	Key       ProgramKey
	Instances int
	Executed  map[ProgramKey]bool

	// Cumulative accounting-correlated time over all instances, seconds.
	Elapsed float64
	User    float64
	Sys     float64
}

func (t *Tree) programFor(key ProgramKey) *Program {
	if key.Empty() {
		return nil
	}
	p, found := t.Programs[key]
	if !found {
		p = &Program{Key: key, Executed: make(map[ProgramKey]bool)}
		t.Programs[key] = p
	}
	p.Instances++
	return p
}
