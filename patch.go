package ligpatch

import (
	"fmt"
	"os"

	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otpatch"
)

// PatchFile patches the ligatures of opts from the font at source into the
// font at target and writes the result to output. The encoded font is
// validated before it is written; critical findings fail the patch and
// nothing is written.
//
// Character glyph names of opts which are absent from the target font are
// looked up in its character map.
func PatchFile(target, source, output string, opts otpatch.Options) (*otpatch.Report, error) {
	tf, err := otedit.LoadFont(target)
	if err != nil {
		return nil, err
	}
	sf, err := otedit.LoadFont(source)
	if err != nil {
		return nil, err
	}
	if err = resolveChars(tf, target, &opts); err != nil {
		return nil, err
	}
	report, err := otpatch.PatchLigatures(tf, sf, opts)
	if err != nil {
		return nil, err
	}
	data, err := tf.Encode()
	if err != nil {
		return nil, err
	}
	ec, err := otedit.Validate(data)
	if err != nil {
		return nil, err
	}
	if ec.HasCriticalErrors() {
		return nil, fmt.Errorf("patched font does not validate: %w", ec.Err())
	}
	if err = os.WriteFile(output, data, 0o644); err != nil {
		return nil, err
	}
	tracer().Infof("wrote %s with %d new lookups", output, report.LookupsAdded)
	return report, nil
}

// resolveChars replaces character glyph names missing from the target font
// by the names its character map yields.
func resolveChars(tf *otedit.Font, path string, opts *otpatch.Options) error {
	if len(opts.Chars) == 0 {
		return nil
	}
	opts.Chars = append([]otpatch.CharGlyph(nil), opts.Chars...)
	var sf *ScalableFont
	for i, cg := range opts.Chars {
		if tf.HasGlyph(cg.Glyph) {
			continue
		}
		if sf == nil {
			var err error
			if sf, err = LoadOpenTypeFont(path); err != nil {
				return err
			}
		}
		if name, err := sf.GlyphName(cg.Char); err == nil && tf.HasGlyph(name) {
			tracer().Debugf("character %q is glyph %s", cg.Char, name)
			opts.Chars[i].Glyph = name
		}
	}
	return nil
}
