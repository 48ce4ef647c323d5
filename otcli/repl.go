package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/pterm/pterm"
)

// inspect runs the interactive session for a font.
func inspect(args []string, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: otcli inspect <font>")
		return exitUsage
	}
	font, err := otedit.LoadFont(args[0])
	if err != nil {
		pterm.Error.Printf("cannot load font: %v\n", err)
		return exitLoad
	}
	repl, err := readline.New("lig > ")
	if err != nil {
		pterm.Error.Println(err)
		return exitUsage
	}
	defer repl.Close()
	intp := &Intp{font: font, repl: repl}
	pterm.Info.Printf("%s: %d glyphs, tables %v\n", args[0], font.NumGlyphs(), font.TableTags())
	for _, w := range font.Warnings() {
		pterm.Info.Println(w.String())
	}
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
	return exitOK
}

// Intp is our interpreter object
type Intp struct {
	font *otedit.Font
	repl *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := intp.parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single step of a command, e.g. "lookup:3".
type Op struct {
	code int
	arg  string
}

// Command is a sequence of steps, separated by blanks.
type Command struct {
	ops []Op
}

const (
	QUIT int = iota
	HELP
	FEATURES
	LOOKUPS
	LOOKUP
	CLOSURE
	GLYPH
	SHAPE
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"features": FEATURES,
	"lookups":  LOOKUPS,
	"lookup":   LOOKUP,
	"closure":  CLOSURE,
	"glyph":    GLYPH,
	"shape":    SHAPE,
}

// parseCommand splits a line into steps like "lookup:5" or "glyph:equal".
// Unknown steps turn into help. A shape step takes the rest of the line as
// its argument, blanks included.
func (intp *Intp) parseCommand(line string) *Command {
	cmd := &Command{}
	for line != "" {
		step, rest, _ := strings.Cut(line, " ")
		name, arg, _ := strings.Cut(step, ":")
		code, ok := opMap[strings.ToLower(name)]
		if !ok {
			code, arg = HELP, ""
		}
		if code == SHAPE {
			_, arg, _ = strings.Cut(line, ":")
			rest = ""
		}
		tracer().Debugf("parsed step %s: '%s'", name, arg)
		cmd.ops = append(cmd.ops, Op{code: code, arg: arg})
		line = strings.TrimSpace(rest)
	}
	return cmd
}

var commandFn = map[int]func(*Intp, *Op) (bool, error){
	QUIT:     quitOp,
	HELP:     helpOp,
	FEATURES: featuresOp,
	LOOKUPS:  lookupsOp,
	LOOKUP:   lookupOp,
	CLOSURE:  closureOp,
	GLYPH:    glyphOp,
	SHAPE:    shapeOp,
}

func (intp *Intp) execute(cmd *Command) (stop bool, err error) {
	for _, op := range cmd.ops {
		if stop, err = commandFn[op.code](intp, &op); err != nil || stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (bool, error) {
	return true, nil
}

var errNoGSUB = errors.New("font has no GSUB table")
