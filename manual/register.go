package manual

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/ezrec/drf/internal"
)

// Formula is one dimension of an array register address.
type Formula struct {
	Limit  uint32 // Number of elements.
	Stride uint32 // Address step between elements.
}

// MaskDef optionally overrides the register masks derived from its fields.
type MaskDef struct {
	Read          *uint32
	Write         *uint32
	Task          *uint32
	Unwriteable   *uint32
	Const         *uint32
	ClearOnWrite1 *uint32
}

// RegisterDef defines a register.
type RegisterDef struct {
	Name    string     // Full name, LW_{unit}_{reg}.
	Access  string     // Register access string, see parseRegisterAccess.
	Address uint32     // Base address.
	Arrays  []Formula  // Zero, one or two array dimensions.
	Masks   MaskDef    // Mask overrides.
	Fields  []FieldDef // Fields, in declaration order.
}

const (
	maskRead = iota
	maskWrite
	maskTask
	maskUnwriteable
	maskConst
	maskClearOnWrite1
	maskCount
)

// Register is a register, or array of registers, of a manual.
type Register struct {
	name    string
	access  string
	address uint32
	arrays  []Formula
	masks   [maskCount]uint32

	fields      []*Field
	fieldByName map[string]*Field
}

func newRegister(def RegisterDef) (reg *Register, err error) {
	defer func() {
		if err != nil {
			err = &ErrDefinition{Name: def.Name, Err: err}
		}
	}()

	access := def.Access
	if len(access) == 0 {
		access = REGISTER_ACCESS_DEFAULT
	}

	err = parseRegisterAccess(access)
	if err != nil {
		return
	}

	if len(def.Arrays) > 2 {
		err = ErrFormula
		return
	}

	last := uint64(def.Address)
	for _, dim := range def.Arrays {
		if dim.Limit == 0 || (dim.Limit > 1 && dim.Stride == 0) {
			err = ErrFormula
			return
		}
		last += uint64(dim.Limit-1) * uint64(dim.Stride)
	}

	// Every element address must fit in 32 bits.
	if last > math.MaxUint32 {
		err = ErrFormula
		return
	}

	reg = &Register{
		name:        def.Name,
		access:      access,
		address:     def.Address,
		arrays:      slices.Clone(def.Arrays),
		fieldByName: make(map[string]*Field, len(def.Fields)),
	}

	var used uint32
	for _, fdef := range def.Fields {
		var fld *Field
		fld, err = newField(reg, fdef)
		if err != nil {
			return
		}
		if _, ok := reg.fieldByName[fld.name]; ok {
			err = &ErrDefinition{Name: fld.name, Err: ErrDuplicate}
			return
		}
		span := fld.span()
		if used&span != 0 {
			err = &ErrDefinition{Name: fld.name, Err: ErrFieldOverlap}
			return
		}
		used |= span

		reg.fields = append(reg.fields, fld)
		reg.fieldByName[fld.name] = fld

		reg.masks[maskRead] |= fld.ReadMask()
		reg.masks[maskWrite] |= fld.WriteMask()
		reg.masks[maskTask] |= fld.TaskMask()
		reg.masks[maskUnwriteable] |= fld.UnwriteableMask()
		reg.masks[maskConst] |= fld.ConstMask()
		reg.masks[maskClearOnWrite1] |= fld.ClearOnWrite1Mask()
	}

	overrides := [maskCount]*uint32{
		def.Masks.Read,
		def.Masks.Write,
		def.Masks.Task,
		def.Masks.Unwriteable,
		def.Masks.Const,
		def.Masks.ClearOnWrite1,
	}
	for n, mask := range overrides {
		if mask != nil {
			reg.masks[n] = *mask
		}
	}

	return
}

// String returns a one line description of the register.
func (reg *Register) String() string {
	text := fmt.Sprintf("%v 0x%08x %v", reg.name, reg.address, reg.access)
	if len(reg.arrays) != 0 {
		var dims []string
		for _, dim := range reg.arrays {
			dims = append(dims, fmt.Sprintf("%vx%#x", dim.Limit, dim.Stride))
		}
		text += " [" + strings.Join(dims, ",") + "]"
	}
	return text
}

// Name of the register.
func (reg *Register) Name() string {
	return reg.name
}

// Access string of the register.
func (reg *Register) Access() string {
	return reg.access
}

// Base address of the register, element (0,0) of an array.
func (reg *Register) Base() uint32 {
	return reg.address
}

// Dimensions of the register address formula, 0, 1 or 2.
func (reg *Register) Dimensions() int {
	return len(reg.arrays)
}

// Formula1 returns the first array dimension.
func (reg *Register) Formula1() (dim Formula, ok bool) {
	if len(reg.arrays) >= 1 {
		dim, ok = reg.arrays[0], true
	}
	return
}

// Formula2 returns the second array dimension.
func (reg *Register) Formula2() (dim Formula, ok bool) {
	if len(reg.arrays) >= 2 {
		dim, ok = reg.arrays[1], true
	}
	return
}

// checkIndex validates at most Dimensions() indices against the limits.
func (reg *Register) checkIndex(idx []uint32) (err error) {
	if len(idx) > len(reg.arrays) {
		err = ErrArity
		return
	}

	for n, i := range idx {
		if i >= reg.arrays[n].Limit {
			err = ErrIndexRange
			return
		}
	}

	return
}

// Address computes base + i*stride1 [+ j*stride2]. The number of indices must
// match the register dimensions.
func (reg *Register) Address(idx ...uint32) (addr uint32, err error) {
	if len(idx) != len(reg.arrays) {
		err = ErrArity
		return
	}

	err = reg.checkIndex(idx)
	if err != nil {
		return
	}

	addr = reg.address
	for n, i := range idx {
		addr += i * reg.arrays[n].Stride
	}

	return
}

// Index returns the array indices whose address is addr.
func (reg *Register) Index(addr uint32) (idx []uint32, ok bool) {
	if addr < reg.address {
		return
	}

	offset := addr - reg.address

	switch len(reg.arrays) {
	case 0:
		if offset == 0 {
			idx, ok = []uint32{}, true
		}
	case 1:
		dim := reg.arrays[0]
		if dim.Limit == 1 {
			if offset == 0 {
				idx, ok = []uint32{0}, true
			}
			return
		}
		if offset%dim.Stride == 0 && offset/dim.Stride < dim.Limit {
			idx, ok = []uint32{offset / dim.Stride}, true
		}
	case 2:
		for i := range reg.arrays[0].Limit {
			step := i * reg.arrays[0].Stride
			if step > offset {
				break
			}
			rem := offset - step
			dim := reg.arrays[1]
			if dim.Limit == 1 {
				if rem == 0 {
					idx, ok = []uint32{i, 0}, true
					return
				}
				continue
			}
			if rem%dim.Stride == 0 && rem/dim.Stride < dim.Limit {
				idx, ok = []uint32{i, rem / dim.Stride}, true
				return
			}
		}
	}

	return
}

// Indices yields every valid index tuple in row-major order. A scalar
// register yields a single empty tuple.
func (reg *Register) Indices() iter.Seq[[]uint32] {
	return func(yield func(idx []uint32) bool) {
		switch len(reg.arrays) {
		case 0:
			yield([]uint32{})
		case 1:
			for i := range reg.arrays[0].Limit {
				if !yield([]uint32{i}) {
					return
				}
			}
		case 2:
			for i := range reg.arrays[0].Limit {
				for j := range reg.arrays[1].Limit {
					if !yield([]uint32{i, j}) {
						return
					}
				}
			}
		}
	}
}

// ReadMask of the readable bits.
func (reg *Register) ReadMask() uint32 {
	return reg.masks[maskRead]
}

// WriteMask of the writable bits.
func (reg *Register) WriteMask() uint32 {
	return reg.masks[maskWrite]
}

// TaskMask of the task trigger bits.
func (reg *Register) TaskMask() uint32 {
	return reg.masks[maskTask]
}

// UnwriteableMask of the bits that ignore writes.
func (reg *Register) UnwriteableMask() uint32 {
	return reg.masks[maskUnwriteable]
}

// ConstMask of the constant bits.
func (reg *Register) ConstMask() uint32 {
	return reg.masks[maskConst]
}

// ClearOnWrite1Mask of the bits cleared by writing 1.
func (reg *Register) ClearOnWrite1Mask() uint32 {
	return reg.masks[maskClearOnWrite1]
}

// UndefMask of the bits no mask category claims.
func (reg *Register) UndefMask() uint32 {
	var known uint32
	for _, mask := range reg.masks {
		known |= mask
	}
	return ^known
}

// Fields of the register, in declaration order.
func (reg *Register) Fields() iter.Seq[*Field] {
	return slices.Values(reg.fields)
}

// Values of every field of the register, in declaration order.
func (reg *Register) Values() iter.Seq[*Value] {
	seqs := make([]iter.Seq[*Value], 0, len(reg.fields))
	for _, fld := range reg.fields {
		seqs = append(seqs, fld.Values())
	}
	return internal.IterSeqConcat(seqs...)
}

// FindField finds a field by its full name, which may select a replica with
// a parenthesized index.
func (reg *Register) FindField(name string) (fld *Field, idx []uint32, err error) {
	base, idx, err := parseName(name)
	if err != nil {
		return
	}

	fld, ok := reg.fieldByName[base]
	if !ok {
		err = ErrFieldMissing(base)
		return
	}

	_, err = fld.replica(idx)
	if err != nil {
		err = &ErrDefinition{Name: name, Err: err}
		fld = nil
	}

	return
}

// hwInit ORs every field's init value of the given kind into place.
func (reg *Register) hwInit(init func(fld *Field) (uint32, bool)) (value uint32, ok bool) {
	for _, fld := range reg.fields {
		v, has := init(fld)
		if !has {
			continue
		}
		for k := range fld.count {
			shift, _ := fld.bits(k)
			value |= v << shift
		}
		ok = true
	}
	return
}

// HwInit is the hardware reset value of the register.
func (reg *Register) HwInit() (uint32, bool) {
	return reg.hwInit((*Field).HwInit)
}

// HwInitCold is the cold reset value of the register.
func (reg *Register) HwInitCold() (uint32, bool) {
	return reg.hwInit((*Field).HwInitCold)
}

// HwInitWarm is the warm reset value of the register.
func (reg *Register) HwInitWarm() (uint32, bool) {
	return reg.hwInit((*Field).HwInitWarm)
}
