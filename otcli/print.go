package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
	"github.com/npillmayer/ligpatch/otlayout"
	"github.com/npillmayer/ligpatch/otpatch"
	"github.com/pterm/pterm"
)

func printReport(report *otpatch.Report) {
	data := [][]string{
		{"Item", "Value"},
		{"Feature", report.Feature.String()},
		{"Italic angle", strconv.FormatFloat(report.ItalicAngle, 'f', 2, 64)},
		{"Imported", joinNames(report.Imported)},
		{"Added", joinNames(report.Added)},
		{"Missing", joinNames(report.Missing)},
		{"Skipped", joinNames(report.Skipped)},
		{"Lookups added", strconv.Itoa(report.LookupsAdded)},
		{"Feature lookups", fmt.Sprintf("%d", len(report.FeatureLookups))},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}

func featuresOp(intp *Intp, op *Op) (bool, error) {
	gsub := intp.font.GSUB()
	if gsub == nil {
		return false, errNoGSUB
	}
	printFeatures(gsub)
	return false, nil
}

func printFeatures(gsub *otgsub.Table) {
	pterm.Printf("GSUB FeatureList has %d entries\n", len(gsub.Features))
	if len(gsub.Features) == 0 {
		return
	}
	data := [][]string{
		{"Index", "Tag", "Lookups"},
	}
	for i, rec := range gsub.Features {
		data = append(data, []string{
			strconv.Itoa(i),
			rec.Tag.String(),
			formatIndices(rec.Feature.Lookups),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatIndices(inx []uint16) string {
	if len(inx) == 0 {
		return "-"
	}
	parts := make([]string, len(inx))
	for i, x := range inx {
		parts[i] = strconv.Itoa(int(x))
	}
	return strings.Join(parts, ",")
}

func lookupsOp(intp *Intp, op *Op) (bool, error) {
	gsub := intp.font.GSUB()
	if gsub == nil {
		return false, errNoGSUB
	}
	printLookupList(gsub)
	return false, nil
}

func printLookupList(gsub *otgsub.Table) {
	count := len(gsub.Lookups)
	pterm.Printf("GSUB LookupList has %d entries\n", count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i, lookup := range gsub.Lookups {
		data = append(data, []string{
			strconv.Itoa(i),
			lookup.Type.String(),
			strconv.Itoa(len(lookup.Subtables)),
			formatLookupFlags(lookup.Flag),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func lookupOp(intp *Intp, op *Op) (bool, error) {
	gsub := intp.font.GSUB()
	if gsub == nil {
		return false, errNoGSUB
	}
	index, err := strconv.Atoi(op.arg)
	if err != nil {
		return false, fmt.Errorf("lookup index expected: '%s'", op.arg)
	}
	return false, printLookup(gsub, index)
}

func printLookup(gsub *otgsub.Table, index int) error {
	if index < 0 || index >= len(gsub.Lookups) {
		return fmt.Errorf("lookup index out of range: %d", index)
	}
	lookup := gsub.Lookups[index]
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d extension=%v\n",
		index,
		lookup.Type,
		formatLookupFlags(lookup.Flag),
		len(lookup.Subtables),
		lookup.Extension,
	)
	data := [][]string{
		{"Sub", "Format", "Summary"},
	}
	for i, sub := range lookup.Subtables {
		format, summary := formatSubtable(sub)
		data = append(data, []string{strconv.Itoa(i), format, summary})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func formatLookupFlags(flag uint16) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&otgsub.RightToLeft != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&otgsub.IgnoreBaseGlyphs != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&otgsub.IgnoreLigatures != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&otgsub.IgnoreMarks != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&otgsub.UseMarkFilteringSet != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&0xff00 != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag>>8))
	}
	return strings.Join(parts, "|")
}

func formatSubtable(sub otgsub.Subtable) (string, string) {
	switch st := sub.(type) {
	case *otgsub.SingleSubst:
		return "single", fmt.Sprintf("mappings=%d", len(st.Mapping))
	case *otgsub.MultipleSubst:
		return "multiple", fmt.Sprintf("sequences=%d", len(st.Sequences))
	case *otgsub.AlternateSubst:
		return "alternate", fmt.Sprintf("sets=%d", len(st.Alternates))
	case *otgsub.LigatureSubst:
		n := 0
		for _, ligs := range st.Ligatures {
			n += len(ligs)
		}
		return "ligature", fmt.Sprintf("first=%d ligatures=%d", len(st.Ligatures), n)
	case *otgsub.SequenceContext:
		return "context/1", fmt.Sprintf("rulesets=%d", len(st.Rules))
	case *otgsub.ClassSequenceContext:
		return "context/2", fmt.Sprintf("coverage=%d classes=%d", len(st.Coverage), len(st.Rules))
	case *otgsub.CoverageSequenceContext:
		return "context/3", fmt.Sprintf("in=%d records=%d", len(st.Input), len(st.Records))
	case *otgsub.ChainedSequenceContext:
		n := 0
		for _, rules := range st.Rules {
			n += len(rules)
		}
		return "chained/1", fmt.Sprintf("rulesets=%d rules=%d", len(st.Rules), n)
	case *otgsub.ChainedClassContext:
		return "chained/2", fmt.Sprintf("coverage=%d classes=%d", len(st.Coverage), len(st.Rules))
	case *otgsub.ChainedCoverageContext:
		return "chained/3", fmt.Sprintf("back=%d in=%d look=%d records=%d",
			len(st.Backtrack), len(st.Input), len(st.Lookahead), len(st.Records))
	case *otgsub.ReverseChainSubst:
		return "reverse", fmt.Sprintf("back=%d look=%d substitutes=%d",
			len(st.Backtrack), len(st.Lookahead), len(st.Substitutes))
	}
	return "?", fmt.Sprintf("%T", sub)
}

func closureOp(intp *Intp, op *Op) (bool, error) {
	gsub := intp.font.GSUB()
	if gsub == nil {
		return false, errNoGSUB
	}
	if len(op.arg) != 4 {
		return false, fmt.Errorf("feature tag expected: '%s'", op.arg)
	}
	direct, closure, err := otpatch.FindFeatureLookups(gsub, ot.T(op.arg))
	if err != nil {
		return false, err
	}
	printClosure(op.arg, direct, closure)
	return false, nil
}

func printClosure(tag string, direct, closure []int) {
	pterm.Printf("Feature %s: %d direct lookups, %d in closure\n", tag, len(direct), len(closure))
	isDirect := make(map[int]bool, len(direct))
	for _, inx := range direct {
		isDirect[inx] = true
	}
	data := [][]string{
		{"Lookup", "Reached"},
	}
	for _, inx := range closure {
		reached := "nested"
		if isDirect[inx] {
			reached = "feature"
		}
		data = append(data, []string{strconv.Itoa(inx), reached})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func glyphOp(intp *Intp, op *Op) (bool, error) {
	return false, printGlyph(intp.font, op.arg)
}

func printGlyph(font *otedit.Font, name string) error {
	gid, ok := font.GlyphID(name)
	if !ok {
		return fmt.Errorf("%w: %s", otedit.ErrGlyphMissing, name)
	}
	g, err := font.Glyph(gid)
	if err != nil {
		return err
	}
	m := font.Metrics(gid)
	pterm.Printf("Glyph %s (%d): advance=%d lsb=%d\n", name, gid, m.Advance, m.LSB)
	if g.IsEmpty() {
		pterm.Println("empty glyph")
		return nil
	}
	data := [][]string{
		{"Kind", "Count", "Bounds"},
	}
	bounds := fmt.Sprintf("(%d,%d)-(%d,%d)", g.XMin, g.YMin, g.XMax, g.YMax)
	if len(g.Components) > 0 {
		names := make([]string, len(g.Components))
		for i, c := range g.Components {
			names[i] = font.GlyphName(c.Glyph)
		}
		data = append(data, []string{"composite", strconv.Itoa(len(g.Components)), bounds})
		data = append(data, []string{"components", strings.Join(names, " "), "-"})
	} else {
		data = append(data, []string{"contours", strconv.Itoa(len(g.Contours)), bounds})
		data = append(data, []string{"points", strconv.Itoa(g.NumPoints()), "-"})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func shapeOp(intp *Intp, op *Op) (bool, error) {
	if intp.font.GSUB() == nil {
		return false, errNoGSUB
	}
	printShape(intp.font, op.arg)
	return false, nil
}

// printShape shapes text with all features of the font switched on.
func printShape(font *otedit.Font, text string) {
	features := make(map[ot.Tag]bool)
	for _, rec := range font.GSUB().Features {
		features[rec.Tag] = true
	}
	tags := make([]string, 0, len(features))
	for tag := range features {
		tags = append(tags, tag.String())
	}
	sort.Strings(tags)
	glyphs := otlayout.Shape(font, text, features)
	pterm.Printf("Shaped '%s' with features %s\n", text, strings.Join(tags, ","))
	pterm.Println(strings.Join(otlayout.GlyphNames(font, glyphs), " "))
}
