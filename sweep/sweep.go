// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package sweep checks every instance of a set of registers, skipping the
// array indices named by an exclusion set.
package sweep

import (
	"errors"
	"fmt"
	"log"
	"math/bits"

	"github.com/ezrec/drf/access"
	"github.com/ezrec/drf/exclusion"
	"github.com/ezrec/drf/manual"
)

// Mismatch is a register instance that did not read back as expected.
type Mismatch struct {
	Register string
	Index    []uint32
	Address  uint32
	Expected uint32
	Actual   uint32
	Mask     uint32
}

func (mm *Mismatch) String() string {
	return fmt.Sprintf("%v%v 0x%08x: expected 0x%08x, got 0x%08x (mask 0x%08x)",
		mm.Register, indexText(mm.Index), mm.Address, mm.Expected, mm.Actual, mm.Mask)
}

func indexText(idx []uint32) string {
	switch len(idx) {
	case 1:
		return fmt.Sprintf("(%d)", idx[0])
	case 2:
		return fmt.Sprintf("(%d,%d)", idx[0], idx[1])
	}
	return ""
}

// Report summarizes a sweep.
type Report struct {
	Checked    int // Comparisons made.
	Skipped    int // Excluded register instances.
	Mismatches []Mismatch
}

// Errors is the number of failed comparisons.
func (rep *Report) Errors() int {
	return len(rep.Mismatches)
}

// Sweep runs bulk register checks through an accessor.
type Sweep struct {
	Accessor   *access.Accessor
	Exclusions *exclusion.Set // Optional.
	Verbose    bool
}

// instance is one index tuple of a register.
type instance struct {
	reg     *manual.Register
	idx     []uint32
	address uint32
}

// instances lists every register instance matching pattern that is not
// excluded, counting the excluded ones.
func (sw *Sweep) instances(pattern string, rep *Report, keep func(reg *manual.Register) bool) (list []instance, err error) {
	if len(pattern) == 0 {
		pattern = "*"
	}

	regs := sw.Accessor.Manual.MatchRegisters(pattern)
	if len(regs) == 0 {
		err = ErrPattern(pattern)
		return
	}

	for _, reg := range regs {
		if !keep(reg) {
			continue
		}
		for idx := range reg.Indices() {
			if sw.skip(reg, idx) {
				if sw.Verbose {
					log.Printf("sweep: skip %v%v", reg.Name(), indexText(idx))
				}
				rep.Skipped++
				continue
			}
			addr, _ := reg.Address(idx...)
			list = append(list, instance{reg: reg, idx: idx, address: addr + sw.Accessor.Base})
		}
	}

	return
}

func (sw *Sweep) skip(reg *manual.Register, idx []uint32) bool {
	if sw.Exclusions == nil || len(idx) == 0 {
		return false
	}

	var i, j uint32
	i = idx[0]
	if len(idx) > 1 {
		j = idx[1]
	}

	return sw.Exclusions.Skip(reg.Name(), i, j)
}

// compare records a check of an instance.
func (sw *Sweep) compare(rep *Report, inst instance, expected, actual, mask uint32) {
	rep.Checked++

	if (expected & mask) == (actual & mask) {
		return
	}

	mm := Mismatch{
		Register: inst.reg.Name(),
		Index:    inst.idx,
		Address:  inst.address,
		Expected: expected & mask,
		Actual:   actual & mask,
		Mask:     mask,
	}
	if sw.Verbose {
		log.Printf("sweep: %v", &mm)
	}
	rep.Mismatches = append(rep.Mismatches, mm)
}

// Reset compares every instance of the matched registers that have a
// hardware init value with that value, over the readable non-task bits.
// Read failures are returned joined, after the sweep completes.
func (sw *Sweep) Reset(pattern string) (rep Report, err error) {
	hasInit := func(reg *manual.Register) bool {
		_, ok := reg.HwInit()
		return ok
	}

	list, err := sw.instances(pattern, &rep, hasInit)
	if err != nil {
		return
	}

	var errs []error
	for _, inst := range list {
		expected, _ := inst.reg.HwInit()
		mask := inst.reg.ReadMask() & ^inst.reg.TaskMask()

		actual, rerr := sw.Accessor.ReadRegister(inst.reg, inst.idx...)
		if rerr != nil {
			errs = append(errs, rerr)
			continue
		}

		sw.compare(&rep, inst, expected, actual, mask)
	}

	err = errors.Join(errs...)
	return
}

// walkMask is the set of writable bits that hold a plain value.
func walkMask(reg *manual.Register) uint32 {
	return reg.WriteMask() & ^(reg.TaskMask() | reg.ClearOnWrite1Mask() | reg.ConstMask())
}

// Walk writes a walking one over the writable bits of every instance of the
// matched registers, and compares the readback over the readable written
// bits. Each instance is restored to its value before the walk.
func (sw *Sweep) Walk(pattern string) (rep Report, err error) {
	writable := func(reg *manual.Register) bool {
		return walkMask(reg) != 0
	}

	list, err := sw.instances(pattern, &rep, writable)
	if err != nil {
		return
	}

	var errs []error
	for _, inst := range list {
		walk := walkMask(inst.reg)
		mask := walk & inst.reg.ReadMask()

		saved, rerr := sw.Accessor.ReadRegister(inst.reg, inst.idx...)
		if rerr != nil {
			errs = append(errs, rerr)
			continue
		}

		for bitmap := walk; bitmap != 0; bitmap &= bitmap - 1 {
			bit := uint32(1) << bits.TrailingZeros32(bitmap)
			value := (saved & ^walk) | bit

			werr := sw.Accessor.WriteRegister(inst.reg, value, inst.idx...)
			if werr != nil {
				errs = append(errs, werr)
				break
			}
			actual, rerr := sw.Accessor.ReadRegister(inst.reg, inst.idx...)
			if rerr != nil {
				errs = append(errs, rerr)
				break
			}

			sw.compare(&rep, inst, value, actual, mask)
		}

		werr := sw.Accessor.WriteRegister(inst.reg, saved, inst.idx...)
		if werr != nil {
			errs = append(errs, werr)
		}
	}

	err = errors.Join(errs...)
	return
}
