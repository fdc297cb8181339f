// Package artifact holds the item record model and turns recognized text
// into validated records.
package artifact

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// StatKey is a GOOD stat key.
type StatKey string

const (
	HealBonus  StatKey = "heal_"
	CritDMG    StatKey = "critDMG_"
	CritRate   StatKey = "critRate_"
	ATK        StatKey = "atk"
	ATKPercent StatKey = "atk_"
	EleMas     StatKey = "eleMas"
	EnerRech   StatKey = "enerRech_"
	HP         StatKey = "hp"
	HPPercent  StatKey = "hp_"
	DEF        StatKey = "def"
	DEFPercent StatKey = "def_"
	ElectroDMG StatKey = "electro_dmg_"
	PyroDMG    StatKey = "pyro_dmg_"
	HydroDMG   StatKey = "hydro_dmg_"
	CryoDMG    StatKey = "cryo_dmg_"
	AnemoDMG   StatKey = "anemo_dmg_"
	GeoDMG     StatKey = "geo_dmg_"
	DendroDMG  StatKey = "dendro_dmg_"
	PhysDMG    StatKey = "physical_dmg_"
)

// Percent reports whether values of k are stored as fractions.
func (k StatKey) Percent() bool {
	switch k {
	case ATK, HP, DEF, EleMas:
		return false
	}
	return true
}

// SlotKey is a GOOD slot key.
type SlotKey string

const (
	Flower  SlotKey = "flower"
	Plume   SlotKey = "plume"
	Sands   SlotKey = "sands"
	Goblet  SlotKey = "goblet"
	Circlet SlotKey = "circlet"
)

// Slots is the slot order used by the piece table.
var Slots = [5]SlotKey{Flower, Plume, Sands, Goblet, Circlet}

// SetKey is a GOOD set key such as "GladiatorsFinale".
type SetKey string

// Field names used in Unknown, ParseError and ValidationError.
const (
	FieldTitle    = "title"
	FieldMainStat = "main-stat"
	FieldLevel    = "level"
	FieldRarity   = "rarity"
	FieldEquip    = "equip"
	FieldLock     = "lock"
)

// SubField names the n-th (0-based) substat line.
func SubField(n int) string { return fmt.Sprintf("sub-stat-%d", n+1) }

// Stat is one attribute. Percent values are fractions (0.039 for 3.9%).
type Stat struct {
	Key   StatKey `json:"key" validate:"required"`
	Value float64 `json:"value" validate:"gt=0"`
}

func (s Stat) String() string {
	if s.Key.Percent() {
		return fmt.Sprintf("%s=%.1f%%", s.Key, s.Value*100)
	}
	return fmt.Sprintf("%s=%g", s.Key, s.Value)
}

// Artifact is a validated record.
type Artifact struct {
	// ID is assigned when the record is accepted.
	ID       string  `json:"id,omitempty"`
	Set      SetKey  `json:"setKey" validate:"required"`
	Slot     SlotKey `json:"slotKey" validate:"oneof=flower plume sands goblet circlet"`
	Rarity   int     `json:"rarity" validate:"min=1,max=5"`
	Level    int     `json:"level" validate:"min=0,max=20"`
	Main     Stat    `json:"mainStat"`
	Subs     []Stat  `json:"substats" validate:"max=4,dive"`
	Location string  `json:"location"`
	Lock     bool    `json:"lock"`
	// Unknown lists optional fields that could not be read.
	Unknown []string `json:"unknown,omitempty"`
}

// IsUnknown reports whether field was left unresolved.
func (a Artifact) IsUnknown(field string) bool {
	return slices.Contains(a.Unknown, field)
}

// SameItem reports whether a and b describe the same item, ignoring ID.
func (a Artifact) SameItem(b Artifact) bool {
	return a.Set == b.Set && a.Slot == b.Slot && a.Rarity == b.Rarity &&
		a.Level == b.Level && a.Main == b.Main && slices.Equal(a.Subs, b.Subs) &&
		a.Location == b.Location && a.Lock == b.Lock
}

func (a Artifact) String() string {
	subs := make([]string, len(a.Subs))
	for i, s := range a.Subs {
		subs[i] = s.String()
	}
	return fmt.Sprintf("%s/%s %d* +%d %s [%s]", a.Set, a.Slot, a.Rarity, a.Level, a.Main, strings.Join(subs, " "))
}

// ErrMissingField marks a required field with no value.
var ErrMissingField = errors.New("artifact: missing required field")

// ParseError reports text that could not be turned into a field value.
type ParseError struct {
	Field string
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("artifact: parse %s %q: %v", e.Field, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LowConfidenceError reports a required field read below the threshold.
type LowConfidenceError struct {
	Field      string
	Confidence float64
	Threshold  float64
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("artifact: %s confidence %.2f below %.2f", e.Field, e.Confidence, e.Threshold)
}

// ValidationError lists every cross-field violation of a candidate.
type ValidationError struct {
	Violations []string
	Err        error
}

func (e *ValidationError) Error() string {
	return "artifact: invalid record: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }
