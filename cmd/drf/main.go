// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/drf/exclusion"
	"github.com/ezrec/drf/manual"
)

func main() {
	var manualPath string
	var dump string
	var exclude string
	var output string
	var verbose bool

	flag.StringVar(&manualPath, "m", "", "Register manual (.h or .yaml)")
	flag.StringVar(&dump, "d", "", "Register dump to load over the reset values")
	flag.StringVar(&exclude, "x", "", "Array exclusion directive file")
	flag.StringVar(&output, "o", "", "Register dump to write on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if len(manualPath) == 0 {
		log.Fatalf("%v: a manual (-m) is required", os.Args[0])
	}

	if flag.NArg() == 0 {
		log.Fatalf("%v: no command given, try 'help' or 'console'", os.Args[0])
	}

	man, err := manual.Load(manualPath)
	if err != nil {
		log.Fatalf("%v: %v", manualPath, err)
	}

	ses := NewSession(man, os.Stdout)
	ses.SetVerbose(verbose)

	if len(dump) != 0 {
		inf, err := os.Open(dump)
		if err != nil {
			log.Fatalf("%v: %v", dump, err)
		}
		err = ses.Memory.Unmarshal(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", dump, err)
		}
	}

	if len(exclude) != 0 {
		inf, err := os.Open(exclude)
		if err != nil {
			log.Fatalf("%v: %v", exclude, err)
		}
		err = ses.Sweep.Exclusions.Load(inf, man)
		inf.Close()
		switch {
		case exclusion.IsFatal(err):
			log.Fatalf("%v: %v", exclude, err)
		case err != nil:
			log.Printf("%v: %v", exclude, err)
		}
	}

	args := flag.Args()
	if args[0] == "console" {
		err = ses.console()
	} else {
		err = ses.Run(args)
	}

	if len(output) != 0 {
		ouf, oerr := os.Create(output)
		if oerr != nil {
			log.Fatalf("%v: %v", output, oerr)
		}
		oerr = ses.Memory.Marshal(ouf)
		ouf.Close()
		if oerr != nil {
			log.Fatalf("%v: %v", output, oerr)
		}
	}

	if err != nil {
		log.Fatal(err)
	}
}
