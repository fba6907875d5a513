package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/drf/access"
	"github.com/ezrec/drf/device"
	"github.com/ezrec/drf/exclusion"
	"github.com/ezrec/drf/manual"
)

func testManual(t *testing.T) *manual.Manual {
	man, err := manual.Build([]manual.RegisterDef{
		{
			Name:    "LW_PFOO_CTRL",
			Address: 0x1000,
			Fields: []manual.FieldDef{
				{
					Name: "LW_PFOO_CTRL_MODE", Low: 0, High: 3,
					Values: []manual.ValueDef{{Name: "LW_PFOO_CTRL_MODE_INIT", Value: 5, Access: "RWI-V"}},
				},
				{Name: "LW_PFOO_CTRL_GO", Access: "-WTVF", Low: 4, High: 4},
				{
					Name: "LW_PFOO_CTRL_STATUS", Access: "R--VF", Low: 8, High: 15,
					Values: []manual.ValueDef{{Name: "LW_PFOO_CTRL_STATUS_INIT", Value: 0x12, Access: "R-I-V"}},
				},
			},
		},
		{
			Name:    "LW_PFOO_ARR",
			Address: 0x2000,
			Arrays:  []manual.Formula{{Limit: 8, Stride: 4}},
			Fields: []manual.FieldDef{
				{
					Name: "LW_PFOO_ARR_VAL", Low: 0, High: 7,
					Values: []manual.ValueDef{{Name: "LW_PFOO_ARR_VAL_INIT", Value: 0, Access: "RWI-V"}},
				},
			},
		},
		{
			Name:    "LW_PFOO_RO",
			Address: 0x3000,
			Fields: []manual.FieldDef{
				{Name: "LW_PFOO_RO_ID", Access: "R--VF", Low: 0, High: 31},
			},
		},
	})
	require.NoError(t, err)
	return man
}

func testSweep(t *testing.T) (sw *Sweep, mem *device.Memory) {
	man := testManual(t)
	mem = device.NewMemory()
	mem.Reset(man)
	sw = &Sweep{
		Accessor:   access.NewAccessor(man, mem),
		Exclusions: exclusion.New(),
	}
	return
}

// stuckDevice clears a bit of every write to one address.
type stuckDevice struct {
	device.Device
	address uint32
	stuck   uint32
}

func (sd *stuckDevice) Write32(addr uint32, value uint32) {
	if addr == sd.address {
		value &= ^sd.stuck
	}
	sd.Device.Write32(addr, value)
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	sw, mem := testSweep(t)
	value, _ := mem.Peek(0x1000)
	assert.Equal(uint32(0x1205), value)

	rep, err := sw.Reset("")
	assert.NoError(err)
	assert.Equal(9, rep.Checked)
	assert.Equal(0, rep.Skipped)
	assert.Equal(0, rep.Errors())

	// Task bits are not compared.
	mem.Map(0x1000, 0x1215)
	mem.Map(0x2008, 0x1)
	assert.NoError(sw.Exclusions.MapArrayReg("A LW_PFOO_ARR 3", sw.Accessor.Manual))

	rep, err = sw.Reset("LW_PFOO_*")
	assert.NoError(err)
	assert.Equal(8, rep.Checked)
	assert.Equal(1, rep.Skipped)
	assert.Equal([]Mismatch{{
		Register: "LW_PFOO_ARR",
		Index:    []uint32{2},
		Address:  0x2008,
		Expected: 0,
		Actual:   1,
		Mask:     0xff,
	}}, rep.Mismatches)
	assert.Equal("LW_PFOO_ARR(2) 0x00002008: expected 0x00000000, got 0x00000001 (mask 0x000000ff)", rep.Mismatches[0].String())
}

func TestResetErrors(t *testing.T) {
	assert := assert.New(t)

	sw, mem := testSweep(t)

	_, err := sw.Reset("LW_NOPE_*")
	assert.ErrorIs(err, ErrNoRegisters)

	// Matched, but nothing to check.
	rep, err := sw.Walk("LW_PFOO_RO")
	assert.NoError(err)
	assert.Equal(0, rep.Checked)
	rep, err = sw.Reset("LW_PFOO_RO")
	assert.NoError(err)
	assert.Equal(0, rep.Checked)

	mem.Unmap(0x2010)
	rep, err = sw.Reset("LW_PFOO_ARR")
	assert.ErrorIs(err, access.ErrBadRead)
	assert.Equal(7, rep.Checked)
}

func TestWalk(t *testing.T) {
	assert := assert.New(t)

	sw, mem := testSweep(t)
	mem.Map(0x2004, 0xa5)

	rep, err := sw.Walk("*")
	assert.NoError(err)
	assert.Equal(4+8*8, rep.Checked)
	assert.Equal(0, rep.Errors())

	value, _ := mem.Peek(0x2004)
	assert.Equal(uint32(0xa5), value)
	value, _ = mem.Peek(0x1000)
	assert.Equal(uint32(0x1205), value)

	// No task bit was written.
	for _, acc := range mem.Writes {
		if acc.Address == 0x1000 {
			assert.Zero(acc.Value&0x10, acc.String())
		}
	}
}

func TestWalkStuck(t *testing.T) {
	assert := assert.New(t)

	sw, mem := testSweep(t)
	sw.Accessor.Device = &stuckDevice{Device: mem, address: 0x2004, stuck: 0x4}
	assert.NoError(sw.Exclusions.MapArrayReg("A LW_PFOO_ARR 7", sw.Accessor.Manual))

	rep, err := sw.Walk("LW_PFOO_ARR")
	assert.NoError(err)
	assert.Equal(7*8, rep.Checked)
	assert.Equal(1, rep.Skipped)
	assert.Equal([]Mismatch{{
		Register: "LW_PFOO_ARR",
		Index:    []uint32{1},
		Address:  0x2004,
		Expected: 0x4,
		Actual:   0x0,
		Mask:     0xff,
	}}, rep.Mismatches)
}

func TestWalkReadbackError(t *testing.T) {
	assert := assert.New(t)

	sw, mem := testSweep(t)
	mem.Script(0x2004, 0x0, device.BAD_READ_VALUE)

	rep, err := sw.Walk("LW_PFOO_ARR")
	assert.ErrorIs(err, access.ErrBadRead)
	assert.Equal(7*8, rep.Checked)
	assert.Equal(0, rep.Errors())

	// The failed instance is still restored.
	value, _ := mem.Peek(0x2004)
	assert.Equal(uint32(0), value)
	var last device.Access
	for _, acc := range mem.Writes {
		if acc.Address == 0x2004 {
			last = acc
		}
	}
	assert.Equal(device.Access{Address: 0x2004, Value: 0}, last)
}
