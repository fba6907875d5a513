package access

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/drf/device"
	"github.com/ezrec/drf/manual"
)

func testManual(t *testing.T) *manual.Manual {
	man, err := manual.Build([]manual.RegisterDef{
		{
			Name:    "LW_X_FOO",
			Address: 0x1000,
			Fields: []manual.FieldDef{
				{
					Name: "LW_X_FOO_BAR", Low: 0, High: 3,
					Values: []manual.ValueDef{
						{Name: "LW_X_FOO_BAR_ENABLED", Value: 0xa},
						{Name: "LW_X_FOO_BAR_DISABLED", Value: 0x0},
					},
				},
				{
					Name: "LW_X_FOO_MODE", Low: 4, High: 7,
					Values: []manual.ValueDef{
						{Name: "LW_X_FOO_MODE_FAST", Value: 0x3},
					},
				},
				{
					Name: "LW_X_FOO_LANE", Low: 8, High: 9, Count: 4,
					Values: []manual.ValueDef{
						{Name: "LW_X_FOO_LANE_ON", Value: 0x3},
					},
				},
			},
		},
		{
			Name:    "LW_X_ARR",
			Address: 0x2000,
			Arrays:  []manual.Formula{{Limit: 4, Stride: 4}},
			Fields: []manual.FieldDef{
				{Name: "LW_X_ARR_VAL", Low: 0, High: 15},
			},
		},
		{
			Name: "LW_X_ZERO",
			Fields: []manual.FieldDef{
				{
					Name: "LW_X_ZERO_EN", Low: 0, High: 0,
					Values: []manual.ValueDef{{Name: "LW_X_ZERO_EN_ON", Value: 1}},
				},
			},
		},
	})
	require.NoError(t, err)
	return man
}

func testAccessor(t *testing.T) (acc *Accessor, mem *device.Memory) {
	mem = device.NewMemory()
	acc = NewAccessor(testManual(t), mem)
	return
}

func TestNames(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("LW_X_FOO", RegisterName("X", "FOO"))
	assert.Equal("LW_X_ARR(2)", RegisterName("X", "ARR(2)"))
	assert.Equal("LW_X_ARR_VAL", FieldName("LW_X_ARR(2)", "VAL"))
	assert.Equal("LW_X_FOO_LANE(1)", FieldName("LW_X_FOO", "LANE(1)"))
	assert.Equal("LW_X_FOO_LANE_ON", ValueName("LW_X_FOO_LANE(1)", "ON"))
}

func TestWriteNamedScenario(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x1000, 0x00000005)

	assert.NoError(acc.WriteNamed("X", "FOO", "BAR", "ENABLED"))
	assert.Equal([]device.Access{{Address: 0x1000, Value: 0x0000000a}}, mem.Writes)

	value, err := acc.Read("X", "FOO", "BAR")
	assert.NoError(err)
	assert.Equal(uint32(0xa), value)

	result, err := acc.CheckNamed("X", "FOO", "BAR", "ENABLED")
	assert.NoError(err)
	assert.Equal(CHECK_EQUAL, result)

	result, err = acc.CheckNamed("X", "FOO", "BAR", "DISABLED")
	assert.NoError(err)
	assert.Equal(CHECK_DIFFERENT, result)
}

func TestWriteNamedReplica(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x1000, 0)

	assert.NoError(acc.WriteNamed("X", "FOO", "LANE(2)", "ON"))
	assert.NoError(acc.WriteNamed("X", "FOO", "LANE", "ON"))
	value, _ := mem.Peek(0x1000)
	assert.Equal(uint32(0x3300), value)

	assert.ErrorIs(acc.WriteNamed("X", "FOO", "LANE(4)", "ON"), manual.ErrIndexRange)
}

func TestWriteNamedErrors(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x1000, 0x5)

	table := []struct {
		Unit, Reg, Field, Value string
	}{
		{"Y", "FOO", "BAR", "ENABLED"},
		{"X", "NOPE", "BAR", "ENABLED"},
		{"X", "FOO", "NOPE", "ENABLED"},
		{"X", "FOO", "BAR", "NOPE"},
		{"X", "FOO", "", "ENABLED"},
	}

	for _, tc := range table {
		err := acc.WriteNamed(tc.Unit, tc.Reg, tc.Field, tc.Value)
		assert.ErrorIs(err, manual.ErrNotFound, tc)
	}
	assert.Empty(mem.Writes)

	// Array registers need their index.
	assert.ErrorIs(acc.WriteNum("X", "ARR", "", 1), manual.ErrArity)
	assert.ErrorIs(acc.WriteNum("X", "ARR(4)", "", 1), manual.ErrIndexRange)
	assert.Empty(mem.Writes)
}

func TestWriteNamedMulti(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x1000, 0xffff0f05)
	acc.BadRead = nil

	err := acc.WriteNamedMulti("X", "FOO",
		FieldValue{Field: "BAR", Value: "ENABLED"},
		FieldValue{Field: "MODE", Value: "FAST"},
	)
	assert.NoError(err)
	assert.Equal([]device.Access{{Address: 0x1000, Value: 0xffff0f3a}}, mem.Writes)

	result, err := acc.CheckNamedMulti("X", "FOO",
		FieldValue{Field: "BAR", Value: "ENABLED"},
		FieldValue{Field: "MODE", Value: "FAST"},
	)
	assert.NoError(err)
	assert.Equal(CHECK_EQUAL, result)

	// A late failure writes nothing.
	err = acc.WriteNamedMulti("X", "FOO",
		FieldValue{Field: "BAR", Value: "DISABLED"},
		FieldValue{Field: "MODE", Value: "SLOW"},
	)
	assert.ErrorIs(err, manual.ErrNotFound)
	assert.Len(mem.Writes, 1)

	result, err = acc.CheckNamedMulti("X", "FOO", FieldValue{Field: "MODE", Value: "SLOW"})
	assert.ErrorIs(err, manual.ErrNotFound)
	assert.Equal(CHECK_ERROR, result)

	// A field named twice writes nothing.
	err = acc.WriteNamedMulti("X", "FOO",
		FieldValue{Field: "BAR", Value: "ENABLED"},
		FieldValue{Field: "BAR", Value: "DISABLED"},
	)
	assert.ErrorIs(err, ErrFieldRepeated)
	assert.Len(mem.Writes, 1)

	err = acc.WriteNamedMulti("X", "FOO",
		FieldValue{Field: "LANE", Value: "ON"},
		FieldValue{Field: "LANE(0)", Value: "ON"},
	)
	assert.ErrorIs(err, ErrFieldRepeated)
	assert.Len(mem.Writes, 1)

	result, err = acc.CheckNamedMulti("X", "FOO",
		FieldValue{Field: "MODE", Value: "FAST"},
		FieldValue{Field: "MODE", Value: "FAST"},
	)
	assert.ErrorIs(err, ErrFieldRepeated)
	assert.Equal(CHECK_ERROR, result)

	// Distinct replicas of one field are distinct fields.
	assert.NoError(acc.WriteNamedMulti("X", "FOO",
		FieldValue{Field: "LANE(1)", Value: "ON"},
		FieldValue{Field: "LANE(3)", Value: "ON"},
	))
	value, _ := mem.Peek(0x1000)
	assert.Equal(uint32(0xffffcf3a), value)
	assert.Len(mem.Writes, 2)

	// No pairs, no access.
	assert.NoError(acc.WriteNamedMulti("X", "FOO"))
	assert.Len(mem.Writes, 2)
}

func TestWriteNumRoundTrip(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)

	for _, before := range []uint32{0, 0x12345678, 0xfffffff0} {
		for _, value := range []uint32{0, 1, 0x7, 0xf} {
			mem.Map(0x1000, before)
			assert.NoError(acc.WriteNum("X", "FOO", "MODE", value))

			got, err := acc.Read("X", "FOO", "MODE")
			assert.NoError(err)
			assert.Equal(value, got)

			reg, _ := mem.Peek(0x1000)
			assert.Equal(before&^uint32(0xf0), reg&^uint32(0xf0))
		}
	}

	assert.ErrorIs(acc.WriteNum("X", "FOO", "MODE", 0x10), ErrValueRange)

	// The whole register is written without a read.
	mem.Unmap(0x2008)
	assert.NoError(acc.WriteNum("X", "ARR(2)", "", 0xbadf0001))
	value, _ := mem.Peek(0x2008)
	assert.Equal(uint32(0xbadf0001), value)
}

func TestReadBad(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)

	_, err := acc.Read("X", "FOO", "")
	assert.ErrorIs(err, ErrBadRead)
	var rerr *ErrRead
	assert.True(errors.As(err, &rerr))
	assert.Equal(uint32(0x1000), rerr.Address)

	// No write after a failed read.
	assert.ErrorIs(acc.WriteNum("X", "FOO", "BAR", 1), ErrBadRead)
	assert.Empty(mem.Writes)

	result, err := acc.Check("X", "FOO", "BAR", 0)
	assert.Equal(CHECK_ERROR, result)
	assert.ErrorIs(err, ErrBadRead)

	acc.BadRead = nil
	value, err := acc.Read("X", "FOO", "")
	assert.NoError(err)
	assert.Equal(uint32(device.BAD_READ_VALUE), value)
}

func TestCheckMasked(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x1000, 0x1234)

	result, err := acc.CheckMasked("X", "FOO", 0xff34, 0x00ff)
	assert.NoError(err)
	assert.Equal(CHECK_EQUAL, result)

	result, err = acc.CheckMasked("X", "FOO", 0x1235, 0x00ff)
	assert.NoError(err)
	assert.Equal(CHECK_DIFFERENT, result)

	result, err = acc.Check("X", "FOO", "", 0x1234)
	assert.NoError(err)
	assert.Equal(CHECK_EQUAL, result)
}

func TestAt(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	mem.Map(0x8000, 0)

	other := acc.At(0x8000)
	assert.Equal(uint32(0), acc.Base)
	assert.NoError(other.WriteNamed("X", "ZERO", "EN", "ON"))
	value, _ := mem.Peek(0x8000)
	assert.Equal(uint32(1), value)

	reg, _, _ := acc.Manual.FindRegister("LW_X_ZERO")
	got, err := other.ReadRegister(reg)
	assert.NoError(err)
	assert.Equal(uint32(1), got)

	assert.NoError(other.WriteRegister(reg, 0))
	value, _ = mem.Peek(0x8000)
	assert.Equal(uint32(0), value)
}

func TestRegisterAccess(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	reg, _, err := acc.Manual.FindRegister("LW_X_ARR")
	require.NoError(t, err)

	assert.NoError(acc.WriteRegister(reg, 0x55, 3))
	value, err := acc.ReadRegister(reg, 3)
	assert.NoError(err)
	assert.Equal(uint32(0x55), value)
	assert.Equal([]device.Access{{Address: 0x200c, Value: 0x55}}, mem.Writes)

	_, err = acc.ReadRegister(reg)
	assert.ErrorIs(err, manual.ErrArity)
	assert.ErrorIs(acc.WriteRegister(reg, 0, 4), manual.ErrIndexRange)
}

func TestVerbose(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	acc, mem := testAccessor(t)
	acc.Verbose = true
	mem.Map(0x1000, 0)

	assert.NoError(acc.WriteNum("X", "FOO", "BAR", 1))
	assert.Error(acc.WriteNum("X", "NOPE", "BAR", 1))

	assert.Contains(buf.String(), "access: read 0x00001000 -> 0x00000000")
	assert.Contains(buf.String(), "access: write 0x00001000 <- 0x00000001")
	assert.Contains(buf.String(), "LW_X_NOPE")

}
