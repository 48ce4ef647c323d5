/*
Command otcli patches ligatures into a TrueType font.

	otcli [flags] <target> <source> <output>
	otcli inspect <font>

The first form copies ligature glyphs from the source font into the target
font and writes the result to output. With -mode transplant, a complete
GSUB feature is copied instead. The second form starts an interactive
session for looking at a font's GSUB table.

Exit codes are 1 for usage errors, 2 if patching fails, 3 if a font cannot
be loaded and 4 if the output cannot be written.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otpatch"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.cli'
func tracer() tracing.Trace {
	return tracing.Select("font.cli")
}

// traceKeys are the trace keys of all packages of this module.
var traceKeys = []string{"font.cli", "font.patch", "font.edit", "font.gsub", "font.opentype", "font.layout"}

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitPatch
	exitLoad
	exitSave
)

func main() {
	initDisplay()
	if err := setupTracing(); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring tracing: %v\n", err)
		os.Exit(exitUsage)
	}
	os.Exit(run(os.Args[1:], os.Stderr))
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setupTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// setTraceLevel sets the level of all trace keys.
func setTraceLevel(level string) error {
	if level != "Debug" && level != "Info" && level != "Error" {
		return fmt.Errorf("invalid trace level: %s", level)
	}
	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch level {
		case "Debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "Info":
			t.SetTraceLevel(tracing.LevelInfo)
		default:
			t.SetTraceLevel(tracing.LevelError)
		}
	}
	return nil
}

// config holds the command line settings of a patch run.
type config struct {
	mode      string
	feature   string
	ligatures string
	passes    int
	italic    string
	trace     string
	summary   bool
	args      []string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("otcli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: otcli [flags] <target> <source> <output>")
		fmt.Fprintln(stderr, "       otcli inspect <font>")
		fs.PrintDefaults()
	}
	c := &config{}
	fs.StringVar(&c.mode, "mode", "synth", "Patch mode [synth|transplant]")
	fs.StringVar(&c.feature, "feature", "calt", "Feature to install into")
	fs.StringVar(&c.ligatures, "ligatures", "", "YAML file with the ligature set")
	fs.IntVar(&c.passes, "passes", 20, "Propagation passes of run blocking")
	fs.StringVar(&c.italic, "italic", "", "Italic angle in degrees (default: from target font)")
	fs.StringVar(&c.trace, "trace", "Error", "Trace level [Debug|Info|Error]")
	fs.BoolVar(&c.summary, "summary", false, "Print a summary of the patch")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.args = fs.Args()
	if c.mode != "synth" && c.mode != "transplant" {
		fs.Usage()
		return nil, fmt.Errorf("invalid mode: %s", c.mode)
	}
	if len(c.feature) != 4 {
		return nil, fmt.Errorf("feature tag must have 4 characters: '%s'", c.feature)
	}
	if len(c.args) != 3 {
		fs.Usage()
		return nil, errors.New("expected target, source and output font")
	}
	return c, nil
}

// options translates command line settings into pipeline options.
func (c *config) options() (otpatch.Options, error) {
	opts := otpatch.DefaultOptions()
	opts.Feature = ot.T(c.feature)
	opts.PropagationPasses = c.passes
	if c.italic != "" {
		angle, err := strconv.ParseFloat(c.italic, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid italic angle: %w", err)
		}
		opts.ItalicAngle = &angle
	}
	if c.ligatures != "" {
		f, err := os.Open(c.ligatures)
		if err != nil {
			return opts, err
		}
		defer f.Close()
		if opts.Ligatures, opts.Chars, err = otpatch.LoadLigatureSet(f); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// run executes the command and returns its exit code.
func run(args []string, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "inspect" {
		return inspect(args[1:], stderr)
	}
	c, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err = setTraceLevel(c.trace); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	opts, err := c.options()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	target, err := otedit.LoadFont(c.args[0])
	if err != nil {
		pterm.Error.Printf("cannot load target font: %v\n", err)
		return exitLoad
	}
	source, err := otedit.LoadFont(c.args[1])
	if err != nil {
		pterm.Error.Printf("cannot load source font: %v\n", err)
		return exitLoad
	}
	for _, w := range append(target.Warnings(), source.Warnings()...) {
		tracer().Infof("%s", w)
	}
	var report *otpatch.Report
	if c.mode == "transplant" {
		report, err = otpatch.TransplantFeature(target, source, opts)
	} else {
		report, err = otpatch.PatchLigatures(target, source, opts)
	}
	if err != nil {
		pterm.Error.Printf("cannot patch %s: %v\n", c.args[0], err)
		return exitPatch
	}
	for _, name := range report.Missing {
		pterm.Error.Printf("glyph %s missing in source font\n", name)
	}
	if err = target.Save(c.args[2]); err != nil {
		pterm.Error.Printf("cannot write %s: %v\n", c.args[2], err)
		return exitSave
	}
	if c.summary {
		printReport(report)
	}
	pterm.Info.Printf("wrote %s: %d glyphs imported, %d lookups added\n",
		c.args[2], len(report.Imported), report.LookupsAdded)
	return exitOK
}
