package otgsub

import (
	"github.com/npillmayer/ligpatch/ot"
)

// FeatureVariations substitutes feature tables under design-space conditions.
// Conditions are kept as raw condition tables.
type FeatureVariations struct {
	Records []*FeatureVariationRecord
}

// FeatureVariationRecord pairs a condition set with feature substitutions.
type FeatureVariationRecord struct {
	Conditions    [][]byte
	Substitutions []FeatureSubstitution
}

// FeatureSubstitution replaces feature FeatureIndex by an alternate feature
// table when the record's conditions are met.
type FeatureSubstitution struct {
	FeatureIndex uint16
	Feature      *Feature
}

func parseFeatureVariations(seg ot.Segment, off int) (*FeatureVariations, error) {
	fv, err := sub(seg, off)
	if err != nil {
		return nil, parseErr("FeatureVariations", err, "offset")
	}
	r := newReader(fv, 4) // skip version
	n := int(r.u32())
	vars := &FeatureVariations{}
	for i := 0; i < n && r.err == nil; i++ {
		condOff, substOff := r.u32(), r.u32()
		rec := &FeatureVariationRecord{}
		if condOff != 0 {
			if rec.Conditions, err = parseConditionSet(fv, int(condOff)); err != nil {
				return nil, err
			}
		}
		if substOff != 0 {
			if rec.Substitutions, err = parseFeatureSubstitutions(fv, int(substOff)); err != nil {
				return nil, err
			}
		}
		vars.Records = append(vars.Records, rec)
	}
	if r.err != nil {
		return nil, parseErr("FeatureVariations", r.err, "records")
	}
	return vars, nil
}

func parseConditionSet(fv ot.Segment, off int) ([][]byte, error) {
	set, err := sub(fv, off)
	if err != nil {
		return nil, parseErr("ConditionSet", err, "offset")
	}
	r := newReader(set, 0)
	n := int(r.u16())
	var conds [][]byte
	for i := 0; i < n && r.err == nil; i++ {
		coff := int(r.u32())
		format, err := set.U16(coff)
		if err != nil || format != 1 {
			return nil, parseErr("Condition", ot.ErrUnsupportedFormat, "condition format %d", format)
		}
		cond, err := set.View(coff, 8)
		if err != nil {
			return nil, parseErr("Condition", err, "condition table")
		}
		conds = append(conds, append([]byte(nil), cond...))
	}
	if r.err != nil {
		return nil, parseErr("ConditionSet", r.err, "condition offsets")
	}
	return conds, nil
}

func parseFeatureSubstitutions(fv ot.Segment, off int) ([]FeatureSubstitution, error) {
	fts, err := sub(fv, off)
	if err != nil {
		return nil, parseErr("FeatureTableSubstitution", err, "offset")
	}
	r := newReader(fts, 4) // skip version
	n := int(r.u16())
	var substs []FeatureSubstitution
	for i := 0; i < n && r.err == nil; i++ {
		inx, foff := r.u16(), r.u32()
		f, err := parseFeature(fts, int(foff), 0)
		if err != nil {
			return nil, err
		}
		substs = append(substs, FeatureSubstitution{FeatureIndex: inx, Feature: f})
	}
	if r.err != nil {
		return nil, parseErr("FeatureTableSubstitution", r.err, "records")
	}
	return substs, nil
}

// encode writes the FeatureVariations table. All offsets are 32 bit.
func (fv *FeatureVariations) encode() []byte {
	out := ot.AppendU32(nil, 0x00010000)
	out = ot.AppendU32(out, uint32(len(fv.Records)))
	recAt := len(out)
	out = append(out, make([]byte, 8*len(fv.Records))...)
	for i, rec := range fv.Records {
		ot.PutU32(out, recAt+8*i, uint32(len(out)))
		out = append(out, encodeConditionSet(rec.Conditions)...)
		ot.PutU32(out, recAt+8*i+4, uint32(len(out)))
		out = append(out, encodeFeatureSubstitutions(rec.Substitutions)...)
	}
	return out
}

func encodeConditionSet(conds [][]byte) []byte {
	out := ot.AppendU16(nil, uint16(len(conds)))
	at := len(out)
	out = append(out, make([]byte, 4*len(conds))...)
	for i, c := range conds {
		ot.PutU32(out, at+4*i, uint32(len(out)))
		out = append(out, c...)
	}
	return out
}

func encodeFeatureSubstitutions(substs []FeatureSubstitution) []byte {
	out := ot.AppendU32(nil, 0x00010000)
	out = ot.AppendU16(out, uint16(len(substs)))
	at := len(out)
	out = append(out, make([]byte, 6*len(substs))...)
	for i, s := range substs {
		ot.PutU16(out, at+6*i, s.FeatureIndex)
		ot.PutU32(out, at+6*i+2, uint32(len(out)))
		out = append(out, encodeFeature(s.Feature)...)
	}
	return out
}
