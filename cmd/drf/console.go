package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

const CONSOLE_PROMPT = "drf> "

// console reads commands interactively until EOF or 'quit'.
func (ses *Session) console() (err error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          CONSOLE_PROMPT,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return
	}
	defer rl.Close()

	out := ses.Output
	ses.Output = rl.Stdout()
	defer func() { ses.Output = out }()

	for {
		line, rerr := rl.Readline()
		if rerr == readline.ErrInterrupt {
			continue
		}
		if rerr != nil {
			return
		}

		if ses.interpret(line) {
			return
		}
	}
}

// interpret runs one console line, returning true on 'quit'.
func (ses *Session) interpret(line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return
	}

	switch strings.ToLower(args[0]) {
	case "quit", "exit", "q":
		return true
	}

	err := ses.Run(args)
	if err != nil {
		fmt.Fprintf(ses.Output, "error: %v\n", err)
	}

	return
}
