package manual

import (
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/ezrec/drf/internal"
)

// Manual is an immutable register manual for one chip.
type Manual struct {
	registers []*Register
	byName    map[string]*Register
}

// Build a manual from register definitions. Every field of a register must
// occupy bits no other field of that register occupies.
func Build(defs []RegisterDef) (man *Manual, err error) {
	man = &Manual{
		byName: make(map[string]*Register, len(defs)),
	}

	for _, def := range defs {
		var reg *Register
		reg, err = newRegister(def)
		if err != nil {
			man = nil
			return
		}
		if _, ok := man.byName[reg.name]; ok {
			err = &ErrDefinition{Name: reg.name, Err: ErrDuplicate}
			man = nil
			return
		}
		man.registers = append(man.registers, reg)
		man.byName[reg.name] = reg
	}

	return
}

// Len is the number of registers.
func (man *Manual) Len() int {
	return len(man.registers)
}

// Registers of the manual, in manual order.
func (man *Manual) Registers() iter.Seq[*Register] {
	return slices.Values(man.registers)
}

// FindRegister finds a register by name. The name may carry up to two
// parenthesized index expressions, such as "LW_PFOO_ARR(3)",
// "LW_PFOO_MAT(1,2)" or "LW_PFOO_MAT(1)(2*4)", which are returned evaluated.
func (man *Manual) FindRegister(name string) (reg *Register, idx []uint32, err error) {
	base, idx, err := parseName(name)
	if err != nil {
		return
	}

	reg, ok := man.byName[base]
	if !ok {
		err = ErrRegisterMissing(base)
		return
	}

	err = reg.checkIndex(idx)
	if err != nil {
		err = &ErrDefinition{Name: name, Err: err}
		reg = nil
		idx = nil
	}

	return
}

// FindAddress finds the register, and its indices, covering an address.
func (man *Manual) FindAddress(addr uint32) (reg *Register, idx []uint32, err error) {
	for _, reg = range man.registers {
		var ok bool
		idx, ok = reg.Index(addr)
		if ok {
			return
		}
	}

	reg = nil
	err = ErrAddressMissing(addr)
	return
}

// isGlob reports if a pattern has wildcards.
func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// globRegexp converts a '*' and '?' wildcard pattern to an anchored regexp.
func globRegexp(pattern string) *regexp.Regexp {
	var expr strings.Builder
	expr.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			expr.WriteString(".*")
		case '?':
			expr.WriteString(".")
		default:
			expr.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	expr.WriteString("$")
	return regexp.MustCompile(expr.String())
}

// MatchRegisters returns the registers whose names match pattern, in manual
// order. A pattern without '*' or '?' is an exact lookup.
func (man *Manual) MatchRegisters(pattern string) (regs []*Register) {
	if !isGlob(pattern) {
		if reg, ok := man.byName[pattern]; ok {
			regs = []*Register{reg}
		}
		return
	}

	re := globRegexp(pattern)
	matching := func(reg *Register) bool {
		return re.MatchString(reg.name)
	}

	return slices.Collect(internal.IterSeqFilter(man.Registers(), matching))
}
