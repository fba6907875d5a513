// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package access reads, writes, compares and polls registers of a device by
// their manual names.
//
// Names follow the manual schema: a register is LW_{unit}_{reg}, where reg
// may carry array indices such as "ARR(3)" or "MAT(1,2)"; a field is
// {register}_{field}, where field may carry a replica index; a value is
// {field}_{value}.
package access

import (
	"log"
	"time"

	"github.com/ezrec/drf/device"
	"github.com/ezrec/drf/manual"
)

// Accessor performs named register operations against a device.
type Accessor struct {
	Manual  *manual.Manual
	Device  device.Device
	Base    uint32              // Added to every register address.
	Verbose bool                // If set, log every failure and access.
	Delay   func(time.Duration) // Delay between poll attempts, time.Sleep if nil.
	BadRead func(uint32) bool   // Read failure detector, none if nil.
}

// FieldValue is a field and named value pair.
type FieldValue struct {
	Field string
	Value string
}

// NewAccessor returns an accessor that treats the device bad read pattern as
// a read failure.
func NewAccessor(man *manual.Manual, dev device.Device) (acc *Accessor) {
	acc = &Accessor{
		Manual:  man,
		Device:  dev,
		BadRead: device.IsBadRead,
	}
	return
}

// At returns a copy of the accessor with a base address offset, for register
// families that the manual defines at zero.
func (acc *Accessor) At(base uint32) *Accessor {
	other := *acc
	other.Base = base
	return &other
}

// RegisterName builds LW_{unit}_{reg}.
func RegisterName(unit, reg string) string {
	return "LW_" + unit + "_" + reg
}

// FieldName builds {register}_{field}, dropping any register indices.
func FieldName(register, field string) string {
	return manual.BaseName(register) + "_" + field
}

// ValueName builds {field}_{value}, dropping any replica index.
func ValueName(field, value string) string {
	return manual.BaseName(field) + "_" + value
}

// fail logs err when verbose, and returns it.
func (acc *Accessor) fail(err error) error {
	if acc.Verbose {
		log.Printf("access: %v", err)
	}
	return err
}

// location is a resolved register instance, or a field of one.
type location struct {
	name    string
	address uint32
	mask    uint32
	shift   uint
	field   *manual.Field
}

// resolve finds a register instance, and its field when field is not empty.
func (acc *Accessor) resolve(unit, reg, field string) (loc location, err error) {
	loc.name = RegisterName(unit, reg)

	register, idx, err := acc.Manual.FindRegister(loc.name)
	if err != nil {
		return
	}

	loc.address, err = register.Address(idx...)
	if err != nil {
		err = &ErrName{Name: loc.name, Err: err}
		return
	}
	loc.address += acc.Base
	loc.mask = ^uint32(0)

	if len(field) == 0 {
		return
	}

	loc.name = FieldName(loc.name, field)
	fld, fidx, err := register.FindField(loc.name)
	if err != nil {
		return
	}

	loc.field = fld
	loc.mask, _ = fld.Mask(fidx...)
	loc.shift, _ = fld.Shift(fidx...)

	return
}

// resolveValue finds a named value of a resolved field, shifted into place.
func (acc *Accessor) resolveValue(loc location, value string) (bits uint32, err error) {
	val, err := loc.field.FindValue(ValueName(loc.field.Name(), value))
	if err != nil {
		return
	}

	bits = (val.Value() << loc.shift) & loc.mask
	return
}

// read32 reads an address, checking for the bad read pattern.
func (acc *Accessor) read32(addr uint32) (value uint32, err error) {
	value = acc.Device.Read32(addr)
	if acc.Verbose {
		log.Printf("access: read 0x%08x -> 0x%08x", addr, value)
	}
	if acc.BadRead != nil && acc.BadRead(value) {
		err = &ErrRead{Address: addr, Value: value}
	}
	return
}

func (acc *Accessor) write32(addr uint32, value uint32) {
	if acc.Verbose {
		log.Printf("access: write 0x%08x <- 0x%08x", addr, value)
	}
	acc.Device.Write32(addr, value)
}

// modify replaces the bits under mask of an address.
func (acc *Accessor) modify(addr uint32, mask uint32, bits uint32) (err error) {
	value, err := acc.read32(addr)
	if err != nil {
		return
	}

	acc.write32(addr, (value & ^mask)|(bits&mask))
	return
}

// WriteNamed sets a field of a register to a named value with a single
// read-modify-write.
func (acc *Accessor) WriteNamed(unit, reg, field, value string) (err error) {
	return acc.WriteNamedMulti(unit, reg, FieldValue{Field: field, Value: value})
}

// WriteNamedMulti sets several fields of a register to named values with a
// single read-modify-write. Every name is resolved before the device is
// accessed.
func (acc *Accessor) WriteNamedMulti(unit, reg string, pairs ...FieldValue) (err error) {
	addr, mask, bits, err := acc.resolvePairs(unit, reg, pairs)
	if err != nil {
		return acc.fail(err)
	}

	if mask == 0 {
		return
	}

	err = acc.modify(addr, mask, bits)
	if err != nil {
		return acc.fail(err)
	}

	return
}

// resolvePairs resolves field and value pairs to a combined mask and value.
// Each field bit may be named by one pair only.
func (acc *Accessor) resolvePairs(unit, reg string, pairs []FieldValue) (addr uint32, mask uint32, bits uint32, err error) {
	for n, pair := range pairs {
		var loc location
		loc, err = acc.resolve(unit, reg, pair.Field)
		if err != nil {
			return
		}
		if loc.field == nil {
			err = &ErrName{Name: loc.name, Err: manual.ErrFieldMissing(pair.Field)}
			return
		}

		var value uint32
		value, err = acc.resolveValue(loc, pair.Value)
		if err != nil {
			return
		}

		if mask&loc.mask != 0 {
			err = &ErrName{Name: loc.name, Err: ErrFieldRepeated}
			return
		}

		if n == 0 {
			addr = loc.address
		}
		mask |= loc.mask
		bits |= value
	}

	if len(pairs) == 0 {
		var loc location
		loc, err = acc.resolve(unit, reg, "")
		addr = loc.address
	}

	return
}

// WriteNum writes a number to a field, or to the whole register when field
// is empty. Only a field write reads the register first.
func (acc *Accessor) WriteNum(unit, reg, field string, number uint32) (err error) {
	loc, err := acc.resolve(unit, reg, field)
	if err != nil {
		return acc.fail(err)
	}

	if loc.field == nil {
		acc.write32(loc.address, number)
		return
	}

	if number > (loc.mask >> loc.shift) {
		return acc.fail(&ErrName{Name: loc.name, Err: ErrValueRange})
	}

	err = acc.modify(loc.address, loc.mask, number<<loc.shift)
	if err != nil {
		return acc.fail(err)
	}

	return
}

// Read returns the value of a field, or of the whole register when field is
// empty.
func (acc *Accessor) Read(unit, reg, field string) (value uint32, err error) {
	loc, err := acc.resolve(unit, reg, field)
	if err != nil {
		return 0, acc.fail(err)
	}

	value, err = acc.read32(loc.address)
	if err != nil {
		return 0, acc.fail(err)
	}

	value = (value & loc.mask) >> loc.shift
	return
}

// Check compares a field, or the whole register, with a number.
func (acc *Accessor) Check(unit, reg, field string, target uint32) (result CheckResult, err error) {
	value, err := acc.Read(unit, reg, field)
	if err != nil {
		return CHECK_ERROR, err
	}

	return compare(value, target), nil
}

// CheckNamed compares a field with a named value.
func (acc *Accessor) CheckNamed(unit, reg, field, value string) (result CheckResult, err error) {
	return acc.CheckNamedMulti(unit, reg, FieldValue{Field: field, Value: value})
}

// CheckNamedMulti compares several fields with named values in one read.
func (acc *Accessor) CheckNamedMulti(unit, reg string, pairs ...FieldValue) (result CheckResult, err error) {
	addr, mask, bits, err := acc.resolvePairs(unit, reg, pairs)
	if err != nil {
		return CHECK_ERROR, acc.fail(err)
	}

	value, err := acc.read32(addr)
	if err != nil {
		return CHECK_ERROR, acc.fail(err)
	}

	return compare(value&mask, bits), nil
}

// CheckMasked compares the bits under mask of a register.
func (acc *Accessor) CheckMasked(unit, reg string, target, mask uint32) (result CheckResult, err error) {
	value, err := acc.Read(unit, reg, "")
	if err != nil {
		return CHECK_ERROR, err
	}

	return compare(value&mask, target&mask), nil
}

// ReadRegister reads one instance of a register.
func (acc *Accessor) ReadRegister(reg *manual.Register, idx ...uint32) (value uint32, err error) {
	addr, err := reg.Address(idx...)
	if err != nil {
		return 0, acc.fail(&ErrName{Name: reg.Name(), Err: err})
	}

	value, err = acc.read32(addr + acc.Base)
	if err != nil {
		return 0, acc.fail(err)
	}

	return
}

// WriteRegister writes one instance of a register.
func (acc *Accessor) WriteRegister(reg *manual.Register, value uint32, idx ...uint32) (err error) {
	addr, err := reg.Address(idx...)
	if err != nil {
		return acc.fail(&ErrName{Name: reg.Name(), Err: err})
	}

	acc.write32(addr+acc.Base, value)
	return
}
