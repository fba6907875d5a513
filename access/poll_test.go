package access

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/drf/device"
)

// delayCounter records poll delays instead of sleeping.
type delayCounter struct {
	delays []time.Duration
}

func (dc *delayCounter) Delay(interval time.Duration) {
	dc.delays = append(dc.delays, interval)
}

func TestPollAlreadyTrue(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	dc := &delayCounter{}
	acc.Delay = dc.Delay
	mem.Map(0x1000, 0xa)

	checks := 0
	check := func() (CheckResult, error) {
		checks++
		return acc.CheckNamed("X", "FOO", "BAR", "ENABLED")
	}

	result, err := acc.Poll(check, time.Second, 10, true)
	assert.NoError(err)
	assert.Equal(POLL_DONE, result)
	assert.Equal(1, checks)
	assert.Empty(dc.delays)
}

func TestPollTimeout(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	dc := &delayCounter{}
	acc.Delay = dc.Delay
	mem.Map(0x1000, 0x5)

	for _, attempts := range []int{1, 2, 5} {
		dc.delays = nil
		checks := 0
		check := func() (CheckResult, error) {
			checks++
			return acc.Check("X", "FOO", "BAR", 0xa)
		}

		result, err := acc.Poll(check, time.Millisecond, attempts, true)
		assert.ErrorIs(err, ErrPollTimeout)
		assert.Equal(POLL_TIMEOUT, result)
		assert.Equal(attempts, checks)
		assert.Len(dc.delays, attempts-1)
		for _, delay := range dc.delays {
			assert.Equal(time.Millisecond, delay)
		}
	}

	checks := 0
	result, _ := acc.Poll(func() (CheckResult, error) {
		checks++
		return CHECK_DIFFERENT, nil
	}, time.Millisecond, 0, true)
	assert.Equal(POLL_TIMEOUT, result)
	assert.Equal(1, checks)
}

func TestPollTransition(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	dc := &delayCounter{}
	acc.Delay = dc.Delay
	mem.Script(0x1000, 0x5, 0x5, 0xa)

	result, err := acc.PollNamed("X", "FOO", "BAR", "ENABLED", time.Microsecond, 5, true)
	assert.NoError(err)
	assert.Equal(POLL_DONE, result)
	assert.Len(dc.delays, 2)

	// Until different.
	dc.delays = nil
	mem.Script(0x1000, 0xa, 0x0)
	result, err = acc.PollNum("X", "FOO", "BAR", 0xa, time.Microsecond, 5, false)
	assert.NoError(err)
	assert.Equal(POLL_DONE, result)
	assert.Len(dc.delays, 1)

	mem.Script(0x1000, 0x30, 0x3a)
	result, err = acc.PollNamedMulti("X", "FOO", []FieldValue{
		{Field: "BAR", Value: "ENABLED"},
		{Field: "MODE", Value: "FAST"},
	}, 0, 3, true)
	assert.NoError(err)
	assert.Equal(POLL_DONE, result)

	mem.Script(0x1000, 0x100, 0x8000)
	result, err = acc.PollMasked("X", "FOO", 0x8000, 0xf000, 0, 3, true)
	assert.NoError(err)
	assert.Equal(POLL_DONE, result)
}

func TestPollError(t *testing.T) {
	assert := assert.New(t)

	acc, mem := testAccessor(t)
	dc := &delayCounter{}
	acc.Delay = dc.Delay

	mem.Script(0x1000, 0x5, device.BAD_READ_VALUE)
	result, err := acc.PollNamed("X", "FOO", "BAR", "ENABLED", time.Second, 5, true)
	assert.ErrorIs(err, ErrBadRead)
	assert.Equal(POLL_ERROR, result)
	assert.Len(dc.delays, 1)

	result, err = acc.PollNamed("X", "FOO", "BAR", "NOPE", time.Second, 5, true)
	assert.Error(err)
	assert.Equal(POLL_ERROR, result)
	assert.False(errors.Is(err, ErrPollTimeout))

	result, err = acc.Poll(func() (CheckResult, error) {
		return CHECK_ERROR, nil
	}, 0, 1, true)
	assert.ErrorIs(err, ErrCheck)
	assert.Equal(POLL_ERROR, result)
}

func TestResultString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("equal", CHECK_EQUAL.String())
	assert.Equal("different", CHECK_DIFFERENT.String())
	assert.Equal("error", CHECK_ERROR.String())
	assert.Equal("done", POLL_DONE.String())
	assert.Equal("timeout", POLL_TIMEOUT.String())
	assert.Equal("error", POLL_ERROR.String())
	assert.Equal("PollResult(7)", PollResult(7).String())
}
