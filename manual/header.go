// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package manual

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
)

// HeaderParser is a line oriented parser for C register manual headers:
//
//	#define LW_PFOO_CTRL                  0x00001000 /* RW-4R */
//	#define LW_PFOO_CTRL_BAR                     3:0 /* RWIVF */
//	#define LW_PFOO_CTRL_BAR_INIT         0x00000005 /* RWI-V */
//	#define LW_PFOO_ARR(i)        (0x00002000+(i)*4) /* RW-4A */
//	#define LW_PFOO_ARR__SIZE_1                   16 /*       */
type HeaderParser struct {
	Verbose bool // If set, logs every recognized definition.

	registers []*headerRegister
	regByName map[string]*headerRegister
	fldByName map[string]*headerField
	sizes     map[string][MAX_INDICES]uint32
}

type headerRegister struct {
	def RegisterDef
}

type headerField struct {
	reg  *headerRegister
	name string
}

var defineRegexp = regexp.MustCompile(`^#\s*define\s+([A-Za-z_][A-Za-z0-9_]*)(\([a-z, ]*\))?\s+(.+?)\s*(?:/\*\s*([^*]*?)\s*\*/)?\s*$`)

var formulaParams = []string{"i", "j"}

// LoadHeader parses a C register manual header into a manual.
func LoadHeader(input io.Reader) (man *Manual, err error) {
	hp := &HeaderParser{}
	return hp.Parse(input)
}

// Parse a C register manual header into a manual.
func (hp *HeaderParser) Parse(input io.Reader) (man *Manual, err error) {
	hp.registers = nil
	hp.regByName = make(map[string]*headerRegister)
	hp.fldByName = make(map[string]*headerField)
	hp.sizes = make(map[string][MAX_INDICES]uint32)

	err = hp.scan(input)
	if err != nil {
		return
	}

	defs := make([]RegisterDef, 0, len(hp.registers))
	for _, hr := range hp.registers {
		size := hp.sizes[hr.def.Name]
		for n := range hr.def.Arrays {
			if size[n] != 0 {
				hr.def.Arrays[n].Limit = size[n]
			}
		}
		for n, fdef := range hr.def.Fields {
			if count := hp.sizes[fdef.Name][0]; count != 0 {
				hr.def.Fields[n].Count = uint(count)
			}
		}
		defs = append(defs, hr.def)
	}

	return Build(defs)
}

func (hp *HeaderParser) scan(input io.Reader) (err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(scanner.Text())

		words := defineRegexp.FindStringSubmatch(line)
		if words == nil {
			continue
		}

		err = hp.define(words[1], words[2], words[3], words[4])
		if err != nil {
			return
		}
	}

	return scanner.Err()
}

// splitBits splits "hi:lo" at the top level colon.
func splitBits(value string) (hi string, lo string, ok bool) {
	depth := 0
	for n, r := range value {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				return value[:n], value[n+1:], true
			}
		}
	}
	return
}

// parent finds the longest prefix of name, cut at an underscore, for which
// lookup succeeds.
func parent[T any](name string, lookup map[string]T) (found T, ok bool) {
	for cut := strings.LastIndexByte(name, '_'); cut > 0; cut = strings.LastIndexByte(name[:cut], '_') {
		found, ok = lookup[name[:cut]]
		if ok {
			return
		}
	}
	return
}

func paramsOf(params string) (names []string) {
	params = strings.Trim(params, "()")
	for _, param := range strings.Split(params, ",") {
		param = strings.TrimSpace(param)
		if len(param) != 0 {
			names = append(names, param)
		}
	}
	return
}

func formulaEnv(params []string, values ...int) (env starlark.StringDict) {
	env = starlark.StringDict{}
	for n, param := range params {
		var value int
		if n < len(values) {
			value = values[n]
		}
		env[param] = starlark.MakeInt(value)
	}
	return
}

func (hp *HeaderParser) define(name string, params string, value string, access string) (err error) {
	// Array and replica sizes.
	for n, suffix := range []string{"__SIZE_1", "__SIZE_2"} {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		var size uint32
		size, err = evalExpr(value, nil)
		if err != nil {
			return
		}
		base := strings.TrimSuffix(name, suffix)
		sizes := hp.sizes[base]
		sizes[n] = size
		hp.sizes[base] = sizes
		return
	}

	// Other manual meta definitions are not modelled.
	if strings.Contains(name, "__") {
		return
	}

	if hi, lo, ok := splitBits(value); ok {
		// Device address ranges, "hi:lo /* RW--D */", are not fields.
		if len(access) == 5 && access[4] == 'D' {
			return
		}
		return hp.defineField(name, paramsOf(params), hi, lo, access)
	}

	if len(access) == 5 && (access[4] == 'R' || access[4] == 'A') {
		return hp.defineRegister(name, paramsOf(params), value, access)
	}

	return hp.defineValue(name, value, access)
}

func (hp *HeaderParser) defineRegister(name string, params []string, formula string, access string) (err error) {
	if len(params) > MAX_INDICES {
		err = ErrFormula
		return
	}

	base, err := evalExpr(formula, formulaEnv(params))
	if err != nil {
		return
	}

	def := RegisterDef{
		Name:    name,
		Access:  access,
		Address: base,
	}

	for n := range params {
		at := []int{0, 0}
		at[n] = 1
		var next uint32
		next, err = evalExpr(formula, formulaEnv(params, at...))
		if err != nil {
			return
		}
		if next < base {
			err = ErrFormula
			return
		}
		def.Arrays = append(def.Arrays, Formula{Limit: 1, Stride: next - base})
	}

	if _, ok := hp.regByName[name]; ok {
		err = ErrDuplicate
		return
	}

	hr := &headerRegister{def: def}
	hp.registers = append(hp.registers, hr)
	hp.regByName[name] = hr

	if hp.Verbose {
		log.Printf("manual: register %v 0x%08x %v", name, base, def.Arrays)
	}

	return
}

func (hp *HeaderParser) defineField(name string, params []string, hi string, lo string, access string) (err error) {
	reg, ok := parent(name, hp.regByName)
	if !ok {
		err = ErrOrphan
		return
	}

	if len(params) > 1 {
		err = ErrFieldRange
		return
	}

	env := formulaEnv(params)
	low, err := evalExpr(lo, env)
	if err != nil {
		return
	}
	high, err := evalExpr(hi, env)
	if err != nil {
		return
	}
	if high < low {
		err = ErrFieldRange
		return
	}

	if len(params) == 1 {
		// Replicas must pack side by side.
		var next uint32
		next, err = evalExpr(lo, formulaEnv(params, 1))
		if err != nil {
			return
		}
		if next != high+1 {
			err = ErrFieldRange
			return
		}
	}

	if _, ok := hp.fldByName[name]; ok {
		err = ErrDuplicate
		return
	}

	reg.def.Fields = append(reg.def.Fields, FieldDef{
		Name:   name,
		Access: access,
		Low:    uint(low),
		High:   uint(high),
		Count:  1,
	})
	hp.fldByName[name] = &headerField{reg: reg, name: name}

	if hp.Verbose {
		log.Printf("manual: field %v %v:%v", name, high, low)
	}

	return
}

// index of the field in its register definition.
func (hf *headerField) index() int {
	for n, fdef := range hf.reg.def.Fields {
		if fdef.Name == hf.name {
			return n
		}
	}
	return -1
}

func (hp *HeaderParser) defineValue(name string, value string, access string) (err error) {
	isValue := len(access) == 5 && access[4] == 'V'

	fld, ok := parent(name, hp.fldByName)
	if !ok {
		if isValue {
			err = ErrOrphan
		}
		return
	}

	number, err := evalExpr(value, nil)
	if err != nil {
		if !isValue {
			err = nil
		}
		return
	}

	if len(access) == 0 {
		access = VALUE_ACCESS_DEFAULT
	}

	fdef := &fld.reg.def.Fields[fld.index()]
	fdef.Values = append(fdef.Values, ValueDef{
		Name:   name,
		Value:  number,
		Access: access,
	})

	if hp.Verbose {
		log.Printf("manual: value %v 0x%x", name, number)
	}

	return
}
