package access

import (
	"log"
	"time"
)

// Checker performs one comparison for Poll.
type Checker func() (CheckResult, error)

func (acc *Accessor) delay(interval time.Duration) {
	if acc.Delay != nil {
		acc.Delay(interval)
	} else {
		time.Sleep(interval)
	}
}

// Poll repeats check until it returns CHECK_EQUAL (or CHECK_DIFFERENT when
// equal is false), waiting interval between attempts. A satisfied first
// check does not wait. At most attempts checks are made, and at least one.
// A CHECK_ERROR stops the poll with POLL_ERROR.
func (acc *Accessor) Poll(check Checker, interval time.Duration, attempts int, equal bool) (result PollResult, err error) {
	want := CHECK_EQUAL
	if !equal {
		want = CHECK_DIFFERENT
	}

	attempts = max(attempts, 1)

	for attempt := range attempts {
		if attempt > 0 {
			acc.delay(interval)
		}

		var got CheckResult
		got, err = check()
		if got == CHECK_ERROR {
			if err == nil {
				err = ErrCheck
			}
			return POLL_ERROR, err
		}

		if got == want {
			if acc.Verbose {
				log.Printf("access: poll done after %d attempts", attempt+1)
			}
			return POLL_DONE, nil
		}
	}

	return POLL_TIMEOUT, acc.fail(ErrPollTimeout)
}

// PollNum polls until a field, or the whole register, matches a number.
func (acc *Accessor) PollNum(unit, reg, field string, target uint32, interval time.Duration, attempts int, equal bool) (PollResult, error) {
	return acc.Poll(func() (CheckResult, error) {
		return acc.Check(unit, reg, field, target)
	}, interval, attempts, equal)
}

// PollNamed polls until a field matches a named value.
func (acc *Accessor) PollNamed(unit, reg, field, value string, interval time.Duration, attempts int, equal bool) (PollResult, error) {
	return acc.Poll(func() (CheckResult, error) {
		return acc.CheckNamed(unit, reg, field, value)
	}, interval, attempts, equal)
}

// PollNamedMulti polls until several fields match named values.
func (acc *Accessor) PollNamedMulti(unit, reg string, pairs []FieldValue, interval time.Duration, attempts int, equal bool) (PollResult, error) {
	return acc.Poll(func() (CheckResult, error) {
		return acc.CheckNamedMulti(unit, reg, pairs...)
	}, interval, attempts, equal)
}

// PollMasked polls until the bits under mask of a register match.
func (acc *Accessor) PollMasked(unit, reg string, target, mask uint32, interval time.Duration, attempts int, equal bool) (PollResult, error) {
	return acc.Poll(func() (CheckResult, error) {
		return acc.CheckMasked(unit, reg, target, mask)
	}, interval, attempts, equal)
}
