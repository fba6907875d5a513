package access

//go:generate go tool stringer -linecomment -type=CheckResult,PollResult

// CheckResult is the outcome of a register comparison.
type CheckResult int

const (
	CHECK_EQUAL     = CheckResult(iota) // equal
	CHECK_DIFFERENT                     // different
	CHECK_ERROR                         // error
)

// PollResult is the outcome of a bounded poll.
type PollResult int

const (
	POLL_DONE    = PollResult(iota) // done
	POLL_TIMEOUT                    // timeout
	POLL_ERROR                      // error
)

// compare returns CHECK_EQUAL if the values are equal.
func compare(value, target uint32) CheckResult {
	if value == target {
		return CHECK_EQUAL
	}
	return CHECK_DIFFERENT
}
