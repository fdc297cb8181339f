package artifact

import (
	"errors"
	"strconv"
	"strings"
)

var statNames = map[string]StatKey{
	"治疗加成":    HealBonus,
	"暴击伤害":    CritDMG,
	"暴击伤":     CritDMG,
	"暴击率":     CritRate,
	"攻击力":     ATK,
	"元素精通":    EleMas,
	"元素充能效率":  EnerRech,
	"生命值":     HP,
	"防御力":     DEF,
	"雷元素伤害加成": ElectroDMG,
	"火元素伤害加成": PyroDMG,
	"水元素伤害加成": HydroDMG,
	"冰元素伤害加成": CryoDMG,
	"风元素伤害加成": AnemoDMG,
	"岩元素伤害加成": GeoDMG,
	"草元素伤害加成": DendroDMG,
	"物理伤害加成":  PhysDMG,
}

// flatOrPercent are the stats whose key depends on a '%' in the value.
var flatOrPercent = map[StatKey]StatKey{ATK: ATKPercent, HP: HPPercent, DEF: DEFPercent}

type piece struct {
	set  SetKey
	slot SlotKey
}

var titles = func() map[string]piece {
	m := make(map[string]piece)
	for _, s := range setPieces {
		for i, title := range s.Pieces {
			if title != "" {
				m[title] = piece{set: s.Set, slot: Slots[i]}
			}
		}
	}
	return m
}()

var (
	errUnknownStat   = errors.New("unknown stat name")
	errUnknownTitle  = errors.New("unknown piece title")
	errUnknownChar   = errors.New("unknown character")
	errBadSeparator  = errors.New("expected name+value")
	errNotEquipLine  = errors.New("missing 已装备 suffix")
	errNoRarityGlyph = errors.New("no rarity digit or star")
)

// ParseStat reads a line such as "暴击率+3.9%". Percent values become
// fractions. For 攻击力, 生命值 and 防御力 the '%' picks the percent key.
func ParseStat(text string) (Stat, error) {
	s := Normalize(text)
	if s == "" {
		return Stat{}, &ParseError{Field: "stat", Text: text, Err: errEmpty}
	}
	if strings.Contains(s, "++") {
		return Stat{}, &ParseError{Field: "stat", Text: text, Err: errBadSeparator}
	}
	idx := strings.LastIndex(s, "+")
	if idx <= 0 || idx == len(s)-1 {
		return Stat{}, &ParseError{Field: "stat", Text: text, Err: errBadSeparator}
	}
	name, raw := s[:idx], s[idx+1:]

	key, ok := statNames[name]
	if !ok {
		return Stat{}, &ParseError{Field: "stat", Text: text, Err: errUnknownStat}
	}
	v, percent, err := parseNumber(raw)
	if err != nil {
		return Stat{}, &ParseError{Field: "stat", Text: text, Err: err}
	}
	if pk, ok := flatOrPercent[key]; ok && percent {
		key = pk
	}
	// Inherently percent stats keep their unit even if the '%' was not read.
	if key.Percent() {
		v /= 100
	}
	return Stat{Key: key, Value: v}, nil
}

// ParseMainStat reads the two main-stat lines of the panel.
func ParseMainStat(name, value string) (Stat, error) {
	st, err := ParseStat(name + "+" + value)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Field = FieldMainStat
		}
		return Stat{}, err
	}
	return st, nil
}

// ParseLevel reads "+20" or "20".
func ParseLevel(text string) (int, error) {
	s := strings.TrimPrefix(Normalize(text), "+")
	if s == "" {
		return 0, &ParseError{Field: FieldLevel, Text: text, Err: errEmpty}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ParseError{Field: FieldLevel, Text: text, Err: errNotNumber}
	}
	return n, nil
}

// ParseRarity reads a digit ("5", "5星") or counts star glyphs ("★★★★").
// Range is not checked here.
func ParseRarity(text string) (int, error) {
	s := Normalize(text)
	if s == "" {
		return 0, &ParseError{Field: FieldRarity, Text: text, Err: errEmpty}
	}
	stars := strings.Count(s, "★") + strings.Count(s, "☆")
	if stars > 0 {
		return stars, nil
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return int(r - '0'), nil
		}
	}
	return 0, &ParseError{Field: FieldRarity, Text: text, Err: errNoRarityGlyph}
}

// ParseTitle maps a piece title to its set and slot. Titles with stray
// characters around them are matched by the longest contained title.
func ParseTitle(text string) (SetKey, SlotKey, error) {
	s := Normalize(text)
	if s == "" {
		return "", "", &ParseError{Field: FieldTitle, Text: text, Err: errEmpty}
	}
	if canon, ok := titleAliases[s]; ok {
		s = canon
	}
	if p, ok := titles[s]; ok {
		return p.set, p.slot, nil
	}

	best := ""
	for _, cand := range titleCandidates() {
		if len(cand) > len(best) && strings.Contains(s, cand) {
			best = cand
		}
	}
	if best != "" {
		if canon, ok := titleAliases[best]; ok {
			best = canon
		}
		p := titles[best]
		return p.set, p.slot, nil
	}
	return "", "", &ParseError{Field: FieldTitle, Text: text, Err: errUnknownTitle}
}

func titleCandidates() []string {
	out := make([]string, 0, len(titles)+len(titleAliases))
	for t := range titles {
		out = append(out, t)
	}
	for a := range titleAliases {
		out = append(out, a)
	}
	return out
}

// ParseEquip reads "<name>已装备" and returns the GOOD location key.
// An empty line means the item is not equipped.
func ParseEquip(text string) (string, error) {
	s := Normalize(text)
	if s == "" {
		return "", nil
	}
	name, ok := strings.CutSuffix(s, "已装备")
	if !ok {
		return "", &ParseError{Field: FieldEquip, Text: text, Err: errNotEquipLine}
	}
	key, ok := characters[name]
	if !ok {
		return "", &ParseError{Field: FieldEquip, Text: text, Err: errUnknownChar}
	}
	return key, nil
}

// ParseCount reads the inventory header "圣遗物1234/2100" and returns the
// item count.
func ParseCount(text string) (int, error) {
	s := Normalize(text)
	slash := strings.LastIndex(s, "/")
	if slash <= 0 {
		return 0, &ParseError{Field: "count", Text: text, Err: errNotNumber}
	}
	start := slash
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	n, err := strconv.Atoi(s[start:slash])
	if err != nil {
		return 0, &ParseError{Field: "count", Text: text, Err: errNotNumber}
	}
	return n, nil
}
