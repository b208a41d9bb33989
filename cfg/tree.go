package cfg

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ardnew/wmconf/log"
)

const none = -1

// node is one entry in the arena.
type node struct {
	name    string
	value   string
	source  string
	line    int
	section int
	next    int
}

// span is a sibling chain. owner is the node that introduced it, or none for
// the root.
type span struct {
	owner int
	first int
	last  int
}

// Tree holds every entry of a parse in a single arena. Entries and sections
// are handles into it and stay valid until the parser that built the tree is
// reset.
type Tree struct {
	nodes    []node
	sections []span
	logger   log.Logger
}

func newTree(logger log.Logger) *Tree {
	return &Tree{
		sections: []span{{owner: none, first: none, last: none}},
		logger:   logger,
	}
}

// Root returns the top-level section.
func (t *Tree) Root() Section { return Section{tree: t, index: 0} }

// Len returns the number of entries in the tree, at every depth.
func (t *Tree) Len() int { return len(t.nodes) }

// add appends an entry to the end of section sec.
func (t *Tree) add(sec int, name, value, source string, line int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{
		name:    name,
		value:   value,
		source:  source,
		line:    line,
		section: none,
		next:    none,
	})

	s := &t.sections[sec]
	if s.last == none {
		s.first = idx
	} else {
		t.nodes[s.last].next = idx
	}

	s.last = idx

	return idx
}

// open creates an empty section owned by entry idx.
func (t *Tree) open(idx int) int {
	sec := len(t.sections)
	t.sections = append(t.sections, span{owner: idx, first: none, last: none})
	t.nodes[idx].section = sec

	return sec
}

// Entry is a name/value pair with the source and line it was read from.
// The zero Entry is not valid.
type Entry struct {
	tree  *Tree
	index int
}

func (e Entry) node() *node { return &e.tree.nodes[e.index] }

// Valid reports whether e refers to an entry.
func (e Entry) Valid() bool { return e.tree != nil }

// Name returns the entry name, the first word of its statement.
func (e Entry) Name() string { return e.node().name }

// Value returns the value with variables expanded.
func (e Entry) Value() string { return e.node().value }

// Source returns the name of the source the entry was read from.
func (e Entry) Source() string { return e.node().source }

// Line returns the line on which the entry's name started.
func (e Entry) Line() int { return e.node().line }

// HasSection reports whether e introduced a section.
func (e Entry) HasSection() bool { return e.node().section != none }

// Section returns the section e introduced.
func (e Entry) Section() (Section, bool) {
	if sec := e.node().section; sec != none {
		return Section{tree: e.tree, index: sec}, true
	}

	return Section{}, false
}

// String formats e as "source@line name = value".
func (e Entry) String() string {
	n := e.node()

	return n.source + "@" + strconv.Itoa(n.line) + " " + n.name + " = " + n.value
}

// Section is an ordered list of entries. The zero Section is empty.
type Section struct {
	tree  *Tree
	index int
}

// Valid reports whether s refers to a section.
func (s Section) Valid() bool { return s.tree != nil }

// IsRoot reports whether s is the top-level section.
func (s Section) IsRoot() bool { return s.tree != nil && s.index == 0 }

// Header returns the entry that introduced s. The root has none.
func (s Section) Header() (Entry, bool) {
	if s.tree == nil {
		return Entry{}, false
	}

	if owner := s.tree.sections[s.index].owner; owner != none {
		return Entry{tree: s.tree, index: owner}, true
	}

	return Entry{}, false
}

// All returns the direct children of s in insertion order.
func (s Section) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if s.tree == nil {
			return
		}

		for i := s.tree.sections[s.index].first; i != none; i = s.tree.nodes[i].next {
			if !yield(Entry{tree: s.tree, index: i}) {
				return
			}
		}
	}
}

// Sections returns the direct children of s that introduced a section.
func (s Section) Sections() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range s.All() {
			if e.HasSection() && !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of direct children.
func (s Section) Len() int {
	n := 0
	for range s.All() {
		n++
	}

	return n
}

// FindEntry returns the first direct child without a section whose name is
// exactly name.
func (s Section) FindEntry(name string) (Entry, bool) {
	for e := range s.All() {
		if !e.HasSection() && e.Name() == name {
			return e, true
		}
	}

	return Entry{}, false
}

// FindSection returns the first direct child with a section whose name
// matches name, ignoring case.
func (s Section) FindSection(name string) (Entry, bool) {
	for e := range s.Sections() {
		if strings.EqualFold(e.Name(), name) {
			return e, true
		}
	}

	return Entry{}, false
}

// Lookup descends through nested sections along path. Every element but the
// last names a section; the last names an entry, or a section if no plain
// entry has that name.
func (s Section) Lookup(path ...string) (Entry, bool) {
	if len(path) == 0 {
		return Entry{}, false
	}

	cur := s

	for _, name := range path[:len(path)-1] {
		e, ok := cur.FindSection(name)
		if !ok {
			return Entry{}, false
		}

		cur, _ = e.Section()
	}

	last := path[len(path)-1]
	if e, ok := cur.FindEntry(last); ok {
		return e, true
	}

	return cur.FindSection(last)
}

// Names returns the names of the direct children of s, once each, in order
// of first appearance.
func (s Section) Names() []string {
	seen := make(map[string]bool)

	var names []string

	for e := range s.All() {
		if !seen[e.Name()] {
			seen[e.Name()] = true
			names = append(names, e.Name())
		}
	}

	return names
}
