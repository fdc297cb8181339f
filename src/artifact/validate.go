package artifact

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

var maxLevel = map[int]int{1: 4, 2: 4, 3: 12, 4: 16, 5: 20}

var mainStatsBySlot = map[SlotKey][]StatKey{
	Flower:  {HP},
	Plume:   {ATK},
	Sands:   {ATKPercent, HPPercent, DEFPercent, EleMas, EnerRech},
	Goblet:  {ATKPercent, HPPercent, DEFPercent, EleMas, ElectroDMG, PyroDMG, HydroDMG, CryoDMG, AnemoDMG, GeoDMG, DendroDMG, PhysDMG},
	Circlet: {ATKPercent, HPPercent, DEFPercent, EleMas, CritRate, CritDMG, HealBonus},
}

// maxMain is the five-star +20 value of each main stat.
var maxMain = map[StatKey]float64{
	HP: 4780, ATK: 311,
	HPPercent: 0.466, ATKPercent: 0.466, DEFPercent: 0.583,
	EleMas: 186.5, EnerRech: 0.518,
	CritRate: 0.311, CritDMG: 0.622, HealBonus: 0.359,
	ElectroDMG: 0.466, PyroDMG: 0.466, HydroDMG: 0.466, CryoDMG: 0.466,
	AnemoDMG: 0.466, GeoDMG: 0.466, DendroDMG: 0.466, PhysDMG: 0.583,
}

// maxSub is six maximum rolls of each substat.
var maxSub = map[StatKey]float64{
	HP: 1793, ATK: 117, DEF: 139,
	HPPercent: 0.35, ATKPercent: 0.35, DEFPercent: 0.438,
	EleMas: 140, EnerRech: 0.389,
	CritRate: 0.234, CritDMG: 0.467,
}

// tolerance absorbs rounding of the displayed value.
const tolerance = 1.01

var structValidator = validator.New()

// Validate checks field ranges and cross-field invariants. Fields listed in
// a.Unknown are not checked.
func Validate(a Artifact) error {
	var violations []string

	if err := structValidator.Struct(a); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				if fe.Field() == "Level" && a.IsUnknown(FieldLevel) {
					continue
				}
				violations = append(violations, fmt.Sprintf("%s: %v fails %s %s", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param()))
			}
		} else {
			violations = append(violations, err.Error())
		}
	}

	if limit, ok := maxLevel[a.Rarity]; ok && !a.IsUnknown(FieldLevel) && a.Level > limit {
		violations = append(violations, fmt.Sprintf("level %d above %d for rarity %d", a.Level, limit, a.Rarity))
	}

	if allowed, ok := mainStatsBySlot[a.Slot]; ok && !slices.Contains(allowed, a.Main.Key) {
		violations = append(violations, fmt.Sprintf("main stat %s not allowed on %s", a.Main.Key, a.Slot))
	}
	if limit, ok := maxMain[a.Main.Key]; ok && a.Main.Value > limit*tolerance {
		violations = append(violations, fmt.Sprintf("main stat %s above %g", a.Main, limit))
	}

	seen := make(map[StatKey]bool)
	for _, s := range a.Subs {
		limit, ok := maxSub[s.Key]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("%s cannot be a substat", s.Key))
		case s.Value > limit*tolerance:
			violations = append(violations, fmt.Sprintf("substat %s above %g", s, limit))
		}
		if seen[s.Key] {
			violations = append(violations, fmt.Sprintf("duplicate substat %s", s.Key))
		}
		seen[s.Key] = true
		if s.Key == a.Main.Key {
			violations = append(violations, fmt.Sprintf("substat %s repeats the main stat", s.Key))
		}
	}

	if a.Rarity == 5 && a.Level == 20 && !a.IsUnknown(FieldLevel) {
		n := len(a.Subs)
		for i := 0; i < 4; i++ {
			if a.IsUnknown(SubField(i)) {
				n++
			}
		}
		if n < 3 {
			violations = append(violations, fmt.Sprintf("%d substats on a +20 five-star", n))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
