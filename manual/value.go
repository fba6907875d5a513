package manual

// ValueDef defines a named value of a field.
type ValueDef struct {
	Name   string // Full name, {field}_{value}.
	Value  uint32 // Unshifted field value.
	Access string // Value access string, see parseValueAccess.
}

// Value is a named value of a field.
type Value struct {
	name   string
	access string
	value  uint32
	flags  ValueFlag
}

func newValue(def ValueDef) (val *Value, err error) {
	access := def.Access
	if len(access) == 0 {
		access = VALUE_ACCESS_DEFAULT
	}

	flags, err := parseValueAccess(access)
	if err != nil {
		err = &ErrDefinition{Name: def.Name, Err: err}
		return
	}

	val = &Value{
		name:   def.Name,
		access: access,
		value:  def.Value,
		flags:  flags,
	}

	return
}

// Name of the value.
func (val *Value) Name() string {
	return val.name
}

// Access string of the value.
func (val *Value) Access() string {
	return val.access
}

// Value is the unshifted numeric value.
func (val *Value) Value() uint32 {
	return val.value
}

// Flags returns the value classification.
func (val *Value) Flags() ValueFlag {
	return val.flags
}

// Is reports if all of the flags are set on the value.
func (val *Value) Is(flags ValueFlag) bool {
	return val.flags&flags == flags
}
