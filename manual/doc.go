// Package manual implements the register manual: an immutable lookup
// structure over the registers, fields and named values of one chip.
//
// Names follow the vendor manual convention. A register is named
// LW_{unit}_{reg}, optionally followed by up to two parenthesized index
// expressions for array registers. A field of a register is named
// {register}_{field}, and a named value of a field is {field}_{value}.
//
// Manuals are built from definitions (Build), C manual headers (LoadHeader)
// or YAML (LoadYAML). Once built a manual never changes, and every traversal
// it hands out is an independent restartable sequence.
package manual
