// Command decomp is the thin CLI wrapping package session's programmatic
// API: load, decode, decompile, save, load_xml. There are no command
// aliases beyond help/version.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"decomp/internal/session"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "-h", "--help", "help":
		usage()
		return
	case "-v", "--version", "version":
		fmt.Println("decomp", version)
		return
	}

	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, "decomp:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := args[0]
	rest := args[1:]

	progress := isatty.IsTerminal(os.Stdout.Fd())
	s := session.New(session.WithLogOutput(os.Stderr))

	switch cmd {
	case "load":
		if len(rest) != 1 {
			return fmt.Errorf("usage: decomp load <binary>")
		}
		if err := s.Load(rest[0]); err != nil {
			return err
		}
		report(progress, "loaded %s", rest[0])
	case "decode":
		if len(rest) != 1 {
			return fmt.Errorf("usage: decomp decode <root.xml>")
		}
		if err := s.LoadXML(rest[0]); err != nil {
			return err
		}
		if err := s.Decode(); err != nil {
			return err
		}
		report(progress, "decoded %s", rest[0])
	case "decompile":
		if len(rest) != 1 {
			return fmt.Errorf("usage: decomp decompile <root.xml>")
		}
		if err := s.LoadXML(rest[0]); err != nil {
			return err
		}
		if err := s.DecompileAll(); err != nil {
			return err
		}
		report(progress, "decompiled %s", rest[0])
	case "save":
		if len(rest) != 2 {
			return fmt.Errorf("usage: decomp save <root.xml> <out-dir>")
		}
		if err := s.LoadXML(rest[0]); err != nil {
			return err
		}
		if err := s.Save(rest[1]); err != nil {
			return err
		}
		report(progress, "saved to %s", rest[1])
	case "load_xml":
		if len(rest) != 1 {
			return fmt.Errorf("usage: decomp load_xml <root.xml>")
		}
		if err := s.LoadXML(rest[0]); err != nil {
			return err
		}
		report(progress, "loaded %s: %d procedures", rest[0], len(s.Program().Procs()))
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func report(progress bool, format string, args ...interface{}) {
	if !progress {
		fmt.Printf(format+"\n", args...)
		return
	}
	fmt.Printf("\033[32m==>\033[0m "+format+"\n", args...)
}

func usage() {
	fmt.Println(`decomp - decompiler core CLI

Usage:
  decomp load <binary>                detect format, seed an empty Program
  decomp load_xml <root.xml>          reload a previously saved Program
  decomp decode <root.xml>            run the decoder over every procedure
  decomp decompile <root.xml>         run SSA conversion + bypass fixed point
  decomp save <root.xml> <out-dir>    reload then re-save under out-dir
  decomp version                      print the version
  decomp help                         show this message`)
}
