package manual

import (
	"iter"
	"slices"
)

// FieldDef defines a bit field of a register.
type FieldDef struct {
	Name   string     // Full name, {register}_{field}.
	Access string     // Field access string, see parseFieldAccess.
	Low    uint       // Lowest bit of replica 0.
	High   uint       // Highest bit of replica 0.
	Count  uint       // Number of replicas, 0 is the same as 1.
	Values []ValueDef // Named values, in declaration order.
}

// Field is a bit range of a register, optionally replicated Count() times
// side by side.
type Field struct {
	name   string
	access string
	mode   fieldMode
	low    uint
	high   uint
	count  uint

	values      []*Value
	valueByName map[string]*Value

	register *Register
}

func newField(reg *Register, def FieldDef) (fld *Field, err error) {
	defer func() {
		if err != nil {
			err = &ErrDefinition{Name: def.Name, Err: err}
		}
	}()

	access := def.Access
	if len(access) == 0 {
		access = FIELD_ACCESS_DEFAULT
	}

	mode, err := parseFieldAccess(access)
	if err != nil {
		return
	}

	count := def.Count
	if count == 0 {
		count = 1
	}

	if def.High < def.Low {
		err = ErrFieldRange
		return
	}

	width := def.High - def.Low + 1
	if def.Low+count*width > 32 {
		err = ErrFieldRange
		return
	}

	fld = &Field{
		name:        def.Name,
		access:      access,
		mode:        mode,
		low:         def.Low,
		high:        def.High,
		count:       count,
		valueByName: make(map[string]*Value, len(def.Values)),
		register:    reg,
	}

	for _, vdef := range def.Values {
		var val *Value
		val, err = newValue(vdef)
		if err != nil {
			return
		}
		if uint64(val.value) >= uint64(1)<<width {
			err = &ErrDefinition{Name: val.name, Err: ErrFieldRange}
			return
		}
		if _, ok := fld.valueByName[val.name]; ok {
			err = &ErrDefinition{Name: val.name, Err: ErrDuplicate}
			return
		}
		fld.values = append(fld.values, val)
		fld.valueByName[val.name] = val
	}

	return
}

// Name of the field.
func (fld *Field) Name() string {
	return fld.name
}

// Access string of the field.
func (fld *Field) Access() string {
	return fld.access
}

// Low is the lowest bit of replica 0.
func (fld *Field) Low() uint {
	return fld.low
}

// High is the highest bit of replica 0.
func (fld *Field) High() uint {
	return fld.high
}

// Width in bits of a single replica.
func (fld *Field) Width() uint {
	return fld.high - fld.low + 1
}

// Count of replicas.
func (fld *Field) Count() uint {
	return fld.count
}

// Register owning the field.
func (fld *Field) Register() *Register {
	return fld.register
}

// bits returns the shift and mask of replica k.
func (fld *Field) bits(k uint) (shift uint, mask uint32) {
	shift = fld.low + k*fld.Width()
	mask = uint32(((uint64(1) << fld.Width()) - 1) << shift)
	return
}

func (fld *Field) replica(idx []uint32) (k uint, err error) {
	switch len(idx) {
	case 0:
	case 1:
		if uint(idx[0]) >= fld.count {
			err = ErrIndexRange
			return
		}
		k = uint(idx[0])
	default:
		err = ErrArity
	}
	return
}

// Mask of a replica, replica 0 when no index is given.
func (fld *Field) Mask(idx ...uint32) (mask uint32, err error) {
	k, err := fld.replica(idx)
	if err != nil {
		return
	}
	_, mask = fld.bits(k)
	return
}

// Shift of a replica, replica 0 when no index is given.
func (fld *Field) Shift(idx ...uint32) (shift uint, err error) {
	k, err := fld.replica(idx)
	if err != nil {
		return
	}
	shift, _ = fld.bits(k)
	return
}

// span is the mask covering every replica.
func (fld *Field) span() (mask uint32) {
	for k := range fld.count {
		_, m := fld.bits(k)
		mask |= m
	}
	return
}

func (fld *Field) spanIf(cond bool) uint32 {
	if cond {
		return fld.span()
	}
	return 0
}

// ReadMask covers every replica if the field is readable.
func (fld *Field) ReadMask() uint32 {
	return fld.spanIf(fld.mode.read)
}

// WriteMask covers every replica if the field is writable.
func (fld *Field) WriteMask() uint32 {
	return fld.spanIf(fld.mode.write)
}

// ConstMask covers every replica if the field is constant.
func (fld *Field) ConstMask() uint32 {
	return fld.spanIf(fld.mode.constant)
}

// UnwriteableMask covers every replica if the field cannot be written.
func (fld *Field) UnwriteableMask() uint32 {
	return fld.spanIf(!fld.mode.write)
}

// TaskMask covers every replica if the field is a task trigger.
func (fld *Field) TaskMask() uint32 {
	return fld.spanIf(fld.mode.task)
}

// ClearOnWrite1Mask covers every replica if writing 1 clears the field.
func (fld *Field) ClearOnWrite1Mask() uint32 {
	return fld.spanIf(fld.mode.clear1)
}

// Values of the field, in declaration order.
func (fld *Field) Values() iter.Seq[*Value] {
	return slices.Values(fld.values)
}

// FindValue finds a value by its full name.
func (fld *Field) FindValue(name string) (val *Value, err error) {
	val, ok := fld.valueByName[name]
	if !ok {
		err = ErrValueMissing(name)
	}
	return
}

// firstFlagged returns the first value, in declaration order, with flag set.
// Later values with the same flag are not considered.
func (fld *Field) firstFlagged(flag ValueFlag) (value uint32, ok bool) {
	for _, val := range fld.values {
		if val.Is(flag) {
			return val.value, true
		}
	}
	return
}

// HwInit is the hardware reset value of the field.
func (fld *Field) HwInit() (uint32, bool) {
	return fld.firstFlagged(VALUE_HW_INIT)
}

// HwInitCold is the cold reset value of the field.
func (fld *Field) HwInitCold() (uint32, bool) {
	return fld.firstFlagged(VALUE_HW_INIT_COLD)
}

// HwInitWarm is the warm reset value of the field.
func (fld *Field) HwInitWarm() (uint32, bool) {
	return fld.firstFlagged(VALUE_HW_INIT_WARM)
}
