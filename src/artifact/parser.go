package artifact

import (
	"errors"
	"image/color"
)

// Reading is the recognized text of one region.
type Reading struct {
	Text       string
	Confidence float64
}

// Empty reports a region with nothing on it.
func (r Reading) Empty() bool { return Normalize(r.Text) == "" }

// Readings is everything read for one item. Colors are optional pixel samples.
type Readings struct {
	Title     Reading
	MainName  Reading
	MainValue Reading
	Level     Reading
	Rarity    Reading
	Subs      [4]Reading
	Equip     Reading

	RarityColor *color.RGBA
	LockColor   *color.RGBA
}

// Parser turns Readings into a validated Artifact.
//
// Required fields (title, main stat, rarity) below Threshold yield a
// LowConfidenceError and text that does not parse yields a ParseError; both
// are worth another capture. Optional fields below Threshold or unparseable
// are listed in Unknown instead. A record that parses but breaks an
// invariant yields a ValidationError.
type Parser struct {
	Threshold float64
}

func (p Parser) Parse(r Readings) (Artifact, error) {
	for _, req := range []struct {
		field string
		rd    Reading
	}{
		{FieldTitle, r.Title},
		{FieldMainStat, r.MainName},
		{FieldMainStat, r.MainValue},
	} {
		if err := p.required(req.field, req.rd); err != nil {
			return Artifact{}, err
		}
	}

	var a Artifact
	var err error
	if a.Set, a.Slot, err = ParseTitle(r.Title.Text); err != nil {
		return Artifact{}, err
	}
	if a.Main, err = ParseMainStat(r.MainName.Text, r.MainValue.Text); err != nil {
		return Artifact{}, err
	}
	if a.Rarity, err = p.rarity(r); err != nil {
		return Artifact{}, err
	}

	if lvl, ok := p.optional(r.Level); ok {
		if n, err := ParseLevel(lvl); err == nil {
			a.Level = n
		} else {
			a.Unknown = append(a.Unknown, FieldLevel)
		}
	} else {
		a.Unknown = append(a.Unknown, FieldLevel)
	}

	for i, sub := range r.Subs {
		if sub.Empty() {
			continue
		}
		text, ok := p.optional(sub)
		if !ok {
			a.Unknown = append(a.Unknown, SubField(i))
			continue
		}
		st, err := ParseStat(text)
		if err != nil {
			a.Unknown = append(a.Unknown, SubField(i))
			continue
		}
		a.Subs = append(a.Subs, st)
	}

	if !r.Equip.Empty() {
		if text, ok := p.optional(r.Equip); ok {
			if loc, err := ParseEquip(text); err == nil {
				a.Location = loc
			} else {
				a.Unknown = append(a.Unknown, FieldEquip)
			}
		} else {
			a.Unknown = append(a.Unknown, FieldEquip)
		}
	}

	if r.LockColor != nil {
		a.Lock = LockFromColor(*r.LockColor)
	} else {
		a.Unknown = append(a.Unknown, FieldLock)
	}

	if err := Validate(a); err != nil {
		return Artifact{}, err
	}
	return a, nil
}

func (p Parser) required(field string, rd Reading) error {
	if rd.Empty() {
		return &ParseError{Field: field, Text: rd.Text, Err: ErrMissingField}
	}
	if rd.Confidence < p.Threshold {
		return &LowConfidenceError{Field: field, Confidence: rd.Confidence, Threshold: p.Threshold}
	}
	return nil
}

func (p Parser) optional(rd Reading) (string, bool) {
	if rd.Empty() || rd.Confidence < p.Threshold {
		return "", false
	}
	return rd.Text, true
}

// rarity prefers confident text and falls back to the star color sample.
func (p Parser) rarity(r Readings) (int, error) {
	var textErr error
	if !r.Rarity.Empty() {
		if r.Rarity.Confidence >= p.Threshold {
			n, err := ParseRarity(r.Rarity.Text)
			if err == nil {
				return n, nil
			}
			textErr = err
		} else {
			textErr = &LowConfidenceError{Field: FieldRarity, Confidence: r.Rarity.Confidence, Threshold: p.Threshold}
		}
	}
	if r.RarityColor != nil {
		if n, ok := RarityFromColor(*r.RarityColor); ok {
			return n, nil
		}
	}
	if textErr != nil {
		return 0, textErr
	}
	return 0, &ParseError{Field: FieldRarity, Err: ErrMissingField}
}

// IsRetryable reports whether err from Parse is worth another capture.
func IsRetryable(err error) bool {
	var lc *LowConfidenceError
	var pe *ParseError
	return errors.As(err, &lc) || errors.As(err, &pe)
}
