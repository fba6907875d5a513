// Package exclusion implements sparse exclusion masks over array registers,
// used by bulk sweeps to skip individual array elements.
//
// Exclusions are given as directives:
//
//	A  <name> <idx>          exclude element idx of a 1-D array register
//	A2 <name> <idx1> <idx2>  exclude element (idx1, idx2) of a 2-D array register
//
// Any index may be '*' to exclude every element along that dimension, and
// <name> may use '*' and '?' wildcards. Tokens are separated by white space,
// ':', CR or LF, so several directives can share one line.
package exclusion

import (
	"errors"
	"io"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"
	"unicode"

	"github.com/ezrec/drf/manual"
)

// WILDCARD selects every index along a dimension.
const WILDCARD = "*"

// Entry is the exclusion grid of one array register.
type Entry struct {
	width  uint32
	height uint32
	mask   []bool // Indexed by i*height + j.
}

func newEntry(width uint32, height uint32) *Entry {
	return &Entry{
		width:  width,
		height: height,
		mask:   make([]bool, int(width)*int(height)),
	}
}

// Width is the limit of the first dimension.
func (ent *Entry) Width() uint32 {
	return ent.width
}

// Height is the limit of the second dimension, 1 for 1-D registers.
func (ent *Entry) Height() uint32 {
	return ent.height
}

// Get reports if element (i, j) is excluded.
func (ent *Entry) Get(i uint32, j uint32) bool {
	if i >= ent.width || j >= ent.height {
		return false
	}
	return ent.mask[int(i)*int(ent.height)+int(j)]
}

// Count of excluded elements.
func (ent *Entry) Count() (count int) {
	for _, excluded := range ent.mask {
		if excluded {
			count++
		}
	}
	return
}

func (ent *Entry) set(i uint32, j uint32) {
	ent.mask[int(i)*int(ent.height)+int(j)] = true
}

// Set of exclusion entries, keyed by register name.
type Set struct {
	Verbose bool // If set, logs every applied directive.

	entries map[string]*Entry
}

// New creates an empty exclusion set.
func New() *Set {
	return &Set{
		entries: make(map[string]*Entry),
	}
}

// Entries of the set.
func (set *Set) Entries() iter.Seq2[string, *Entry] {
	return maps.All(set.entries)
}

// Entry returns the exclusion grid of a register, if any.
func (set *Set) Entry(name string) (ent *Entry, ok bool) {
	ent, ok = set.entries[name]
	return
}

// Skip reports if element (i, j) of a register is excluded. Use j = 0 for
// 1-D registers. Indices outside the register's grid are not excluded.
func (set *Set) Skip(name string, i uint32, j uint32) bool {
	ent, ok := set.entries[name]
	if !ok {
		return false
	}

	if i >= ent.width || j >= ent.height {
		log.Printf("exclusion: warning: %v(%v,%v) outside %vx%v exclusion grid", name, i, j, ent.width, ent.height)
		return false
	}

	return ent.Get(i, j)
}

func isDelimiter(r rune) bool {
	return r == ':' || r == '\r' || r == '\n' || unicode.IsSpace(r)
}

// tokenize splits directive text into tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, isDelimiter)
}

// indexRange is a literal index, or every index of a dimension.
type indexRange struct {
	value    uint32
	wildcard bool
}

func parseIndex(word string) (ir indexRange, err error) {
	if word == WILDCARD {
		ir.wildcard = true
		return
	}

	value, perr := strconv.ParseUint(word, 0, 32)
	if perr != nil {
		err = ErrDirective
		return
	}

	ir.value = uint32(value)
	return
}

// bounds returns the [lo, hi) range over a dimension of the given limit.
func (ir indexRange) bounds(limit uint32) (lo uint32, hi uint32, err error) {
	if ir.wildcard {
		return 0, limit, nil
	}
	if ir.value >= limit {
		err = ErrRange
		return
	}
	return ir.value, ir.value + 1, nil
}

// MapArrayReg applies a single exclusion directive. Every array register
// matching the directive's name receives an exclusion grid sized by its own
// array formula. A literal index beyond a register's bound drops the
// directive for that register only, and ErrRange is returned once every
// other match has been applied.
func (set *Set) MapArrayReg(text string, man *manual.Manual) (err error) {
	dir, rest, err := parseDirective(tokenize(text))
	if err != nil {
		return
	}

	if len(rest) != 0 {
		err = ErrDirective
		return
	}

	return set.apply(dir, man)
}

// Load applies a stream of directives. Directives dropped for range or
// match failures are collected and returned together; any other failure
// stops the load.
func (set *Set) Load(input io.Reader, man *manual.Manual) (err error) {
	text, err := io.ReadAll(input)
	if err != nil {
		return
	}

	var soft []error

	words := tokenize(string(text))
	for len(words) != 0 {
		var dir directive
		dir, words, err = parseDirective(words)
		if err != nil {
			return
		}

		aerr := set.apply(dir, man)
		if aerr == nil {
			continue
		}
		if !isSoft(aerr) {
			err = aerr
			return
		}
		soft = append(soft, aerr)
	}

	err = errors.Join(soft...)
	return
}

// directive is a parsed exclusion directive.
type directive struct {
	verb  string
	name  string
	index [2]indexRange
}

// parseDirective consumes one directive from words, without applying it.
func parseDirective(words []string) (dir directive, rest []string, err error) {
	if len(words) == 0 {
		err = ErrDirective
		return
	}

	var args int
	switch words[0] {
	case "A":
		args = 2
	case "A2":
		args = 3
	default:
		err = ErrVerb(words[0])
		return
	}

	if len(words) < 1+args {
		err = ErrDirective
		return
	}

	dir.verb = words[0]
	dir.name = words[1]

	for n := range args - 1 {
		dir.index[n], err = parseIndex(words[2+n])
		if err != nil {
			return
		}
	}
	if args == 2 {
		// A on a 2-D register excludes the full row.
		dir.index[1].wildcard = true
	}

	rest = words[1+args:]
	return
}

// apply marks a parsed directive on every matching array register.
func (set *Set) apply(dir directive, man *manual.Manual) (err error) {
	var applied int
	var soft []error
	for _, reg := range man.MatchRegisters(dir.name) {
		var rerr error
		var ok bool
		ok, rerr = set.mark(reg, dir.index)
		if rerr != nil {
			rerr = &ErrRegister{Register: reg.Name(), Err: rerr}
			if !isSoft(rerr) {
				err = rerr
				return
			}
			log.Printf("exclusion: %v %v dropped: %v", dir.verb, reg.Name(), rerr)
			soft = append(soft, rerr)
			continue
		}
		if ok {
			applied++
		}
	}

	if applied == 0 && len(soft) == 0 {
		err = &ErrRegister{Register: dir.name, Err: ErrNoMatch}
		return
	}

	if set.Verbose {
		log.Printf("exclusion: %v %v applied to %v registers", dir.verb, dir.name, applied)
	}

	err = errors.Join(soft...)
	return
}

// mark applies index ranges to one register. Registers without an array
// formula are ignored.
func (set *Set) mark(reg *manual.Register, index [2]indexRange) (ok bool, err error) {
	dim1, is_array := reg.Formula1()
	if !is_array {
		return
	}

	width := dim1.Limit
	height := uint32(1)
	if dim2, is_2d := reg.Formula2(); is_2d {
		height = dim2.Limit
	}

	ilo, ihi, err := index[0].bounds(width)
	if err != nil {
		return
	}
	jlo, jhi, err := index[1].bounds(height)
	if err != nil {
		return
	}

	ent, exists := set.entries[reg.Name()]
	if !exists {
		ent = newEntry(width, height)
		set.entries[reg.Name()] = ent
	} else if ent.width != width || ent.height != height {
		err = ErrDimensionMismatch
		return
	}

	for i := ilo; i < ihi; i++ {
		for j := jlo; j < jhi; j++ {
			ent.set(i, j)
		}
	}

	ok = true
	return
}
