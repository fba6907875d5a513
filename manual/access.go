package manual

import (
	"strings"
)

// Default access strings for definitions that leave access empty.
const (
	REGISTER_ACCESS_DEFAULT = "RW-4R"
	FIELD_ACCESS_DEFAULT    = "RW-VF"
	VALUE_ACCESS_DEFAULT    = "RW--V"
)

// ValueFlag classifies a named value.
type ValueFlag uint

const (
	VALUE_HW_INIT      = ValueFlag(1 << 0) // Hardware reset value.
	VALUE_HW_INIT_COLD = ValueFlag(1 << 1) // Cold (power-on) reset value.
	VALUE_HW_INIT_WARM = ValueFlag(1 << 2) // Warm reset value.
	VALUE_CONSTANT     = ValueFlag(1 << 3) // Value never changes.
	VALUE_TASK         = ValueFlag(1 << 4) // Value requests a hardware task.
)

var valueFlagNames = []struct {
	Flag ValueFlag
	Name string
}{
	{VALUE_HW_INIT, "init"},
	{VALUE_HW_INIT_COLD, "init-cold"},
	{VALUE_HW_INIT_WARM, "init-warm"},
	{VALUE_CONSTANT, "constant"},
	{VALUE_TASK, "task"},
}

func (vf ValueFlag) String() string {
	var names []string
	for _, item := range valueFlagNames {
		if vf&item.Flag != 0 {
			names = append(names, item.Name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// fieldMode is a decoded field access string.
type fieldMode struct {
	read     bool
	write    bool
	constant bool
	clear1   bool
	task     bool
}

func checkAccess(access string, allowed [5]string) (err error) {
	if len(access) != 5 {
		err = ErrAccess
		return
	}

	for n := range 5 {
		if !strings.ContainsRune(allowed[n], rune(access[n])) {
			err = ErrAccess
			return
		}
	}

	return
}

// parseRegisterAccess validates a register access string such as "RW-4R".
func parseRegisterAccess(access string) (err error) {
	return checkAccess(access, [5]string{"R-", "W-", "-", "1248", "RA"})
}

// parseFieldAccess decodes a field access string such as "RWIVF".
func parseFieldAccess(access string) (mode fieldMode, err error) {
	err = checkAccess(access, [5]string{"RC-", "WC-", "IT-", "V-", "F"})
	if err != nil {
		return
	}

	mode.read = access[0] != '-'
	mode.constant = access[0] == 'C'
	mode.write = access[1] != '-'
	mode.clear1 = access[1] == 'C'
	mode.task = access[2] == 'T'

	return
}

// parseValueAccess decodes a value access string such as "RWI-V".
func parseValueAccess(access string) (flags ValueFlag, err error) {
	err = checkAccess(access, [5]string{"RC-", "WC-", "ICW-", "CT-", "V"})
	if err != nil {
		return
	}

	switch access[2] {
	case 'I':
		flags |= VALUE_HW_INIT
	case 'C':
		flags |= VALUE_HW_INIT_COLD
	case 'W':
		flags |= VALUE_HW_INIT_WARM
	}

	switch access[3] {
	case 'C':
		flags |= VALUE_CONSTANT
	case 'T':
		flags |= VALUE_TASK
	}

	return
}
