package artifact

import (
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"暴击率＋３．９％", "暴击率+3.9%"},
		{"攻击力+3l1", "攻击力+311"},
		{"+2O", "+20"},
		{"生命值 + 4,78O", "生命值+4,780"},
		{"元素·精通+I6", "元素精通+16"},
		{"Sands", "Sands"},
		{"防御力+5B", "防御力+58"},
		{"|2", "12"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStat(t *testing.T) {
	tests := []struct {
		in      string
		key     StatKey
		value   float64
		wantErr bool
	}{
		{"暴击率+3.9%", CritRate, 0.039, false},
		{"暴击伤害+7.8%", CritDMG, 0.078, false},
		{"暴击伤+7.8%", CritDMG, 0.078, false},
		{"攻击力+19", ATK, 19, false},
		{"攻击力+5.8%", ATKPercent, 0.058, false},
		{"生命值+4,780", HP, 4780, false},
		{"生命值+4，780", HP, 4780, false},
		{"防御力+7,3%", DEFPercent, 0.073, false},
		{"元素精通+23", EleMas, 23, false},
		{"元素充能效率+6.5%", EnerRech, 0.065, false},
		{"暴击率+3.9", CritRate, 0.039, false},
		{"物理伤害加成+58.3%", PhysDMG, 0.583, false},
		{"雷元素伤害加成+46.6%", ElectroDMG, 0.466, false},
		{"暴击率++3.9%", "", 0, true},
		{"暴击率+", "", 0, true},
		{"+3.9%", "", 0, true},
		{"暴击率3.9%", "", 0, true},
		{"幸运值+3", "", 0, true},
		{"攻击力+abc", "", 0, true},
		{"暴击率+NaN%", "", 0, true},
		{"攻击力+Inf", "", 0, true},
		{"元素精通+infinity", "", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStat(tt.in)
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected ParseError, got %v (%v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStat: %v", err)
			}
			if got.Key != tt.key || !approx(got.Value, tt.value) {
				t.Errorf("got %v/%v, want %v/%v", got.Key, got.Value, tt.key, tt.value)
			}
		})
	}
}

func TestParseNumberRejectsNonFinite(t *testing.T) {
	for _, in := range []string{"NaN", "NaN%", "Inf", "-Inf", "+Inf%", "infinity"} {
		if v, _, err := parseNumber(in); !errors.Is(err, errNotNumber) {
			t.Errorf("parseNumber(%q) = %v, %v, want errNotNumber", in, v, err)
		}
	}
	if v, pct, err := parseNumber("3.9%"); err != nil || v != 3.9 || !pct {
		t.Errorf("parseNumber(3.9%%) = %v, %v, %v", v, pct, err)
	}
}

func TestParseLevelAndRarity(t *testing.T) {
	for in, want := range map[string]int{"+20": 20, "20": 20, "+0": 0, "+l6": 16} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "+", "max"} {
		if _, err := ParseLevel(bad); err == nil {
			t.Errorf("ParseLevel(%q) should fail", bad)
		}
	}

	for in, want := range map[string]int{"5": 5, "★★★★": 4, "4星": 4, "6": 6} {
		got, err := ParseRarity(in)
		if err != nil || got != want {
			t.Errorf("ParseRarity(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := ParseRarity("星"); err == nil {
		t.Error("ParseRarity without digit or star should fail")
	}
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		in   string
		set  SetKey
		slot SlotKey
	}{
		{"角斗士的留恋", "GladiatorsFinale", Flower},
		{"琴师的箭羽", "WanderersTroupe", Plume},
		{"终末的时计", "WanderersTroupe", Sands},
		{"星罗圭璧之晷", "ArchaicPetra", Sands},
		{"祭雷礼冠", "PrayersForWisdom", Circlet},
		{"深廊的遂失之冕", "FinaleOfTheDeepGalleries", Circlet},
		{"「角斗士的酣醉」", "GladiatorsFinale", Goblet},
	}
	for _, tt := range tests {
		set, slot, err := ParseTitle(tt.in)
		if err != nil {
			t.Errorf("ParseTitle(%q): %v", tt.in, err)
			continue
		}
		if set != tt.set || slot != tt.slot {
			t.Errorf("ParseTitle(%q) = %s/%s, want %s/%s", tt.in, set, slot, tt.set, tt.slot)
		}
	}
	if _, _, err := ParseTitle("无名之物"); err == nil {
		t.Error("unknown title should fail")
	}
}

func TestPieceTableIsConsistent(t *testing.T) {
	if len(setPieces) != 55 {
		t.Errorf("got %d sets, want 55", len(setPieces))
	}
	seen := map[string]SetKey{}
	for _, s := range setPieces {
		for _, title := range s.Pieces {
			if title == "" {
				continue
			}
			if prev, dup := seen[title]; dup {
				t.Errorf("title %q in both %s and %s", title, prev, s.Set)
			}
			seen[title] = s.Set
		}
	}
	for alias, canon := range titleAliases {
		if _, ok := titles[canon]; !ok {
			t.Errorf("alias %q points at unknown title %q", alias, canon)
		}
	}
}

func TestParseEquip(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"胡桃已装备", "HuTao", false},
		{"雷电将军 已装备", "RaidenShogun", false},
		{"", "", false},
		{"胡桃", "", true},
		{"无名氏已装备", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEquip(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEquip(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseCount(t *testing.T) {
	for in, want := range map[string]int{"圣遗物1234/2100": 1234, "圣遗物 87 / 2100": 87} {
		got, err := ParseCount(in)
		if err != nil || got != want {
			t.Errorf("ParseCount(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := ParseCount("圣遗物"); err == nil {
		t.Error("ParseCount without a count should fail")
	}
}

func TestColors(t *testing.T) {
	if r, ok := RarityFromColor(color.RGBA{188, 105, 50, 255}); !ok || r != 5 {
		t.Errorf("gold = %d/%v, want 5", r, ok)
	}
	if r, ok := RarityFromColor(color.RGBA{158, 90, 220, 255}); !ok || r != 4 {
		t.Errorf("near purple = %d/%v, want 4", r, ok)
	}
	if _, ok := RarityFromColor(color.RGBA{255, 255, 255, 255}); ok {
		t.Error("white should not match a star color")
	}
	if !LockFromColor(color.RGBA{250, 140, 120, 255}) {
		t.Error("lock color not detected")
	}
	if LockFromColor(color.RGBA{40, 40, 40, 255}) {
		t.Error("dark pixel detected as lock")
	}
}

func validFlower() Artifact {
	return Artifact{
		Set: "GladiatorsFinale", Slot: Flower, Rarity: 5, Level: 20,
		Main: Stat{HP, 4780},
		Subs: []Stat{{CritRate, 0.039}, {CritDMG, 0.14}, {ATKPercent, 0.058}, {EleMas, 23}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
		want   string
	}{
		{"valid", func(*Artifact) {}, ""},
		{"rarity six", func(a *Artifact) { a.Rarity = 6 }, "Rarity"},
		{"level above rarity max", func(a *Artifact) { a.Rarity = 4; a.Level = 20; a.Main.Value = 3000 }, "level 20 above 16"},
		{"unknown level skips check", func(a *Artifact) { a.Rarity = 4; a.Level = 0; a.Unknown = []string{FieldLevel}; a.Main.Value = 3000 }, ""},
		{"wrong main for slot", func(a *Artifact) { a.Main = Stat{CritRate, 0.311} }, "not allowed on flower"},
		{"main too large", func(a *Artifact) { a.Main.Value = 9999 }, "main stat"},
		{"duplicate substat", func(a *Artifact) { a.Subs[1] = Stat{CritRate, 0.07} }, "duplicate substat"},
		{"substat equals main", func(a *Artifact) { a.Subs[3] = Stat{HP, 299} }, "repeats the main stat"},
		{"dmg bonus as substat", func(a *Artifact) { a.Subs[3] = Stat{PyroDMG, 0.05} }, "cannot be a substat"},
		{"too many substats", func(a *Artifact) { a.Subs = append(a.Subs, Stat{DEF, 19}) }, "Subs"},
		{"too few substats at +20", func(a *Artifact) { a.Subs = a.Subs[:2] }, "2 substats"},
		{"substat too large", func(a *Artifact) { a.Subs[0].Value = 0.9 }, "above"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validFlower()
			tt.mutate(&a)
			err := Validate(a)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func goodReadings() Readings {
	lock := color.RGBA{255, 138, 117, 255}
	return Readings{
		Title:     Reading{"角斗士的留恋", 0.95},
		MainName:  Reading{"生命值", 0.95},
		MainValue: Reading{"4,780", 0.95},
		Level:     Reading{"+20", 0.95},
		Rarity:    Reading{"5", 0.95},
		Subs: [4]Reading{
			{"暴击率+3.9%", 0.95},
			{"暴击伤害+14.0%", 0.95},
			{"攻击力+5.8%", 0.95},
			{"元素精通+23", 0.95},
		},
		Equip:     Reading{"胡桃已装备", 0.95},
		LockColor: &lock,
	}
}

func TestParserAccepts(t *testing.T) {
	p := Parser{Threshold: 0.7}
	a, err := p.Parse(goodReadings())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Set != "GladiatorsFinale" || a.Slot != Flower || a.Rarity != 5 || a.Level != 20 {
		t.Errorf("unexpected record %v", a)
	}
	if a.Location != "HuTao" || !a.Lock || len(a.Subs) != 4 || len(a.Unknown) != 0 {
		t.Errorf("unexpected record %v, unknown=%v", a, a.Unknown)
	}

	again, _ := p.Parse(goodReadings())
	if !a.SameItem(again) {
		t.Error("parsing the same readings twice gave different records")
	}
}

func TestParserRequiredFields(t *testing.T) {
	p := Parser{Threshold: 0.7}

	r := goodReadings()
	r.MainValue.Confidence = 0.4
	var lc *LowConfidenceError
	if _, err := p.Parse(r); !errors.As(err, &lc) || !IsRetryable(err) {
		t.Errorf("low main stat confidence: got %v", err)
	}

	r = goodReadings()
	r.Title = Reading{}
	if _, err := p.Parse(r); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing title: got %v", err)
	}

	r = goodReadings()
	r.Rarity = Reading{}
	if _, err := p.Parse(r); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing rarity without color: got %v", err)
	}

	gold := color.RGBA{188, 105, 50, 255}
	r.RarityColor = &gold
	if a, err := p.Parse(r); err != nil || a.Rarity != 5 {
		t.Errorf("rarity from color: %v %v", a.Rarity, err)
	}

	r = goodReadings()
	r.Rarity = Reading{"6", 0.95}
	var ve *ValidationError
	if _, err := p.Parse(r); !errors.As(err, &ve) || IsRetryable(err) {
		t.Errorf("rarity 6: got %v", err)
	}
}

func TestParserOptionalFieldsBecomeUnknown(t *testing.T) {
	p := Parser{Threshold: 0.7}
	r := goodReadings()
	r.Level.Confidence = 0.3
	r.Subs[3] = Reading{"元素精通+2?", 0.9}
	r.Equip.Confidence = 0.2
	r.LockColor = nil

	a, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, f := range []string{FieldLevel, SubField(3), FieldEquip, FieldLock} {
		if !a.IsUnknown(f) {
			t.Errorf("%s should be unknown, got %v", f, a.Unknown)
		}
	}
	if len(a.Subs) != 3 || a.Location != "" {
		t.Errorf("unexpected record %v", a)
	}

	r = goodReadings()
	r.Subs[3] = Reading{}
	r.Equip = Reading{}
	a, err = p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(a.Unknown) != 0 || len(a.Subs) != 3 {
		t.Errorf("empty lines are absent, not unknown: %v %v", a.Subs, a.Unknown)
	}
}
