package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ezrec/drf/access"
	"github.com/ezrec/drf/device"
	"github.com/ezrec/drf/exclusion"
	"github.com/ezrec/drf/manual"
	"github.com/ezrec/drf/sweep"
	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	ErrUsage   = errors.New(f("invalid usage"))
	ErrCommand = errors.New(f("unknown command"))
)

const (
	POLL_ATTEMPTS_DEFAULT = 10
	POLL_DELAY_DEFAULT    = time.Millisecond
	WHOLE_REGISTER        = "-" // Field argument selecting the whole register.
)

// Session runs commands against a simulated register file.
type Session struct {
	Verbose  bool
	Output   io.Writer
	Manual   *manual.Manual
	Memory   *device.Memory
	Accessor *access.Accessor
	Sweep    *sweep.Sweep
}

// NewSession returns a session over a memory reset from the manual.
func NewSession(man *manual.Manual, out io.Writer) (ses *Session) {
	mem := device.NewMemory()
	mem.Reset(man)

	acc := access.NewAccessor(man, mem)

	ses = &Session{
		Output:   out,
		Manual:   man,
		Memory:   mem,
		Accessor: acc,
		Sweep: &sweep.Sweep{
			Accessor:   acc,
			Exclusions: exclusion.New(),
		},
	}

	return
}

// SetVerbose sets the verbosity of the session and its components.
func (ses *Session) SetVerbose(verbose bool) {
	ses.Verbose = verbose
	ses.Accessor.Verbose = verbose
	ses.Sweep.Verbose = verbose
	ses.Sweep.Exclusions.Verbose = verbose
}

type command struct {
	usage string
	run   func(ses *Session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"list":    {"list [PATTERN]", (*Session).cmdList},
		"read":    {"read UNIT REG [FIELD]", (*Session).cmdRead},
		"write":   {"write UNIT REG FIELD|- VALUE|NUMBER", (*Session).cmdWrite},
		"poll":    {"poll UNIT REG FIELD|- VALUE|NUMBER [ATTEMPTS] [DELAY]", (*Session).cmdPoll},
		"reset":   {"reset [PATTERN]", (*Session).cmdReset},
		"walk":    {"walk [PATTERN]", (*Session).cmdWalk},
		"exclude": {"exclude DIRECTIVE...", (*Session).cmdExclude},
		"dump":    {"dump", (*Session).cmdDump},
		"help":    {"help", (*Session).cmdHelp},
	}
}

// Run executes one command.
func (ses *Session) Run(args []string) (err error) {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("%w: %v", ErrCommand, args[0])
	}

	return cmd.run(ses, args[1:])
}

func usage(name string) error {
	return fmt.Errorf("%w: %v", ErrUsage, commands[name].usage)
}

func (ses *Session) cmdHelp(args []string) (err error) {
	for _, name := range []string{"list", "read", "write", "poll", "reset", "walk", "exclude", "dump", "help"} {
		fmt.Fprintf(ses.Output, "  %v\n", commands[name].usage)
	}
	return
}

func (ses *Session) cmdList(args []string) (err error) {
	if len(args) > 1 {
		return usage("list")
	}

	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}

	for _, reg := range ses.Manual.MatchRegisters(pattern) {
		fmt.Fprintln(ses.Output, reg)
		if !ses.Verbose {
			continue
		}
		for fld := range reg.Fields() {
			fmt.Fprintf(ses.Output, "  %v %d:%d %v", fld.Name(), fld.High(), fld.Low(), fld.Access())
			if fld.Count() > 1 {
				fmt.Fprintf(ses.Output, " x%d", fld.Count())
			}
			fmt.Fprintln(ses.Output)
			for val := range fld.Values() {
				fmt.Fprintf(ses.Output, "    %v 0x%x %v\n", val.Name(), val.Value(), val.Flags())
			}
		}
	}

	return
}

func fieldArg(arg string) string {
	if arg == WHOLE_REGISTER {
		return ""
	}
	return arg
}

func parseNumber(arg string) (value uint32, ok bool) {
	v64, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return
	}
	return uint32(v64), true
}

func (ses *Session) cmdRead(args []string) (err error) {
	if len(args) < 2 || len(args) > 3 {
		return usage("read")
	}

	field := ""
	if len(args) == 3 {
		field = fieldArg(args[2])
	}

	value, err := ses.Accessor.Read(args[0], args[1], field)
	if err != nil {
		return
	}

	fmt.Fprintf(ses.Output, "0x%08x\n", value)
	return
}

func (ses *Session) cmdWrite(args []string) (err error) {
	if len(args) != 4 {
		return usage("write")
	}

	unit, reg, field := args[0], args[1], fieldArg(args[2])
	if number, ok := parseNumber(args[3]); ok {
		return ses.Accessor.WriteNum(unit, reg, field, number)
	}

	if len(field) == 0 {
		return usage("write")
	}

	return ses.Accessor.WriteNamed(unit, reg, field, args[3])
}

func (ses *Session) cmdPoll(args []string) (err error) {
	if len(args) < 4 || len(args) > 6 {
		return usage("poll")
	}

	attempts := POLL_ATTEMPTS_DEFAULT
	if len(args) > 4 {
		attempts, err = strconv.Atoi(args[4])
		if err != nil {
			return usage("poll")
		}
	}

	delay := POLL_DELAY_DEFAULT
	if len(args) > 5 {
		delay, err = time.ParseDuration(args[5])
		if err != nil {
			return usage("poll")
		}
	}

	unit, reg, field := args[0], args[1], fieldArg(args[2])

	var result access.PollResult
	if number, ok := parseNumber(args[3]); ok {
		result, err = ses.Accessor.PollNum(unit, reg, field, number, delay, attempts, true)
	} else {
		result, err = ses.Accessor.PollNamed(unit, reg, field, args[3], delay, attempts, true)
	}

	fmt.Fprintln(ses.Output, result)
	return
}

func (ses *Session) report(rep sweep.Report) {
	for _, mm := range rep.Mismatches {
		fmt.Fprintln(ses.Output, &mm)
	}
	fmt.Fprintf(ses.Output, "checked %d, skipped %d, errors %d\n", rep.Checked, rep.Skipped, rep.Errors())
}

func patternArg(name string, args []string) (pattern string, err error) {
	switch len(args) {
	case 0:
	case 1:
		pattern = args[0]
	default:
		err = usage(name)
	}
	return
}

func (ses *Session) cmdReset(args []string) (err error) {
	pattern, err := patternArg("reset", args)
	if err != nil {
		return
	}

	rep, err := ses.Sweep.Reset(pattern)
	ses.report(rep)
	return
}

func (ses *Session) cmdWalk(args []string) (err error) {
	pattern, err := patternArg("walk", args)
	if err != nil {
		return
	}

	rep, err := ses.Sweep.Walk(pattern)
	ses.report(rep)
	return
}

func (ses *Session) cmdExclude(args []string) (err error) {
	if len(args) == 0 {
		return usage("exclude")
	}

	return ses.Sweep.Exclusions.Load(strings.NewReader(strings.Join(args, " ")), ses.Manual)
}

func (ses *Session) cmdDump(args []string) (err error) {
	if len(args) != 0 {
		return usage("dump")
	}

	return ses.Memory.Marshal(ses.Output)
}
