package manual

import (
	"math"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// MAX_INDICES is the largest number of index terms in a name.
const MAX_INDICES = 2

// splitName splits "NAME(a)(b)" or "NAME(a,b)" into NAME and the index
// expressions.
func splitName(name string) (base string, terms []string, err error) {
	open := strings.IndexByte(name, '(')
	if open < 0 {
		if strings.IndexByte(name, ')') >= 0 {
			err = ErrParseIndex(name)
		}
		base = name
		return
	}

	base = name[:open]
	if len(strings.TrimSpace(base)) == 0 {
		err = ErrParseIndex(name)
		return
	}

	rest := name[open:]
	for len(rest) > 0 {
		if rest[0] != '(' {
			err = ErrParseIndex(name)
			return
		}

		depth := 0
		start := 1
		closed := -1
	scan:
		for n := range len(rest) {
			switch rest[n] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					closed = n
					break scan
				}
			case ',':
				if depth == 1 {
					terms = append(terms, rest[start:n])
					start = n + 1
				}
			}
		}
		if closed < 0 {
			err = ErrParseIndex(name)
			return
		}
		terms = append(terms, rest[start:closed])
		rest = rest[closed+1:]
	}

	if len(terms) > MAX_INDICES {
		err = ErrParseIndex(name)
		return
	}

	for n, term := range terms {
		terms[n] = strings.TrimSpace(term)
		if len(terms[n]) == 0 {
			err = ErrParseIndex(name)
			return
		}
	}

	return
}

// evalExpr evaluates an integer expression. Plain literals are parsed
// directly, anything else is evaluated as a Starlark expression with env
// predeclared.
func evalExpr(expr string, env starlark.StringDict) (value uint32, err error) {
	expr = strings.TrimSpace(expr)

	v64, perr := strconv.ParseUint(expr, 0, 32)
	if perr == nil {
		value = uint32(v64)
		return
	}

	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	prog := "rc=" + expr + "\n"
	dict, serr := starlark.ExecFileOptions(&opts, &thread, "expr", prog, env)
	if serr != nil {
		err = ErrParseIndex(expr)
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseIndex(expr)
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > math.MaxUint32 {
		err = ErrParseIndex(expr)
		return
	}

	value = uint32(st_int64)
	return
}

// parseName splits a name into its base and evaluated indices.
func parseName(name string) (base string, idx []uint32, err error) {
	base, terms, err := splitName(name)
	if err != nil {
		return
	}

	for _, term := range terms {
		var value uint32
		value, err = evalExpr(term, nil)
		if err != nil {
			return
		}
		idx = append(idx, value)
	}

	return
}

// BaseName strips any parenthesized indices from a name.
func BaseName(name string) string {
	if open := strings.IndexByte(name, '('); open >= 0 {
		return name[:open]
	}
	return name
}
