package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (bool, error) {
	help(op.arg)
	return false, nil
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "lookup", "lookups":
		pterm.Info.Println("Lookups")
		pterm.Println(`
	'lookups' lists all GSUB lookups with type, subtable count and flags.
	'lookup:N' shows the subtables of lookup N.
	Lookups are applied in the order of the lookup list, each one as a
	complete pass over the glyph sequence.
	`)
	case "closure", "feature", "features":
		pterm.Info.Println("Features")
		pterm.Println(`
	'features' lists the feature records with the lookups they activate.
	'closure:calt' lists the lookups of a feature, together with every
	lookup reachable from one of them through a nested lookup record.
	`)
	case "shape":
		pterm.Info.Println("Shaping")
		pterm.Println(`
	'shape:<text>' runs the GSUB lookups of all features over text and
	prints the resulting glyph names. The rest of the line is the text.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	features          list feature records
	lookups           list the lookup list
	lookup:N          show lookup N
	closure:TAG       lookups reachable from feature TAG
	glyph:NAME        show outline summary and metrics of a glyph
	shape:TEXT        substitute glyphs for TEXT
	help[:TOPIC]      help on lookup, closure or shape
	quit              leave the session

	Steps may be combined on a line, e.g. "lookup:3 lookup:4".
	`)
	}
}
