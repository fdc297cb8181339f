package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"artifact-scanner/src/artifact"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	goodFormat  = "GOOD"
	goodVersion = 1
	goodSource  = "artifact-scanner"
)

type goodDocument struct {
	Format    string         `json:"format"`
	Version   int            `json:"version"`
	Source    string         `json:"source"`
	Artifacts []goodArtifact `json:"artifacts"`
}

type goodArtifact struct {
	SetKey      string     `json:"setKey"`
	SlotKey     string     `json:"slotKey"`
	Level       int        `json:"level"`
	Rarity      int        `json:"rarity"`
	MainStatKey string     `json:"mainStatKey"`
	Location    string     `json:"location"`
	Lock        bool       `json:"lock"`
	Substats    []goodStat `json:"substats"`
}

type goodStat struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func toGOOD(a artifact.Artifact) goodArtifact {
	g := goodArtifact{
		SetKey:      string(a.Set),
		SlotKey:     string(a.Slot),
		Level:       a.Level,
		Rarity:      a.Rarity,
		MainStatKey: string(a.Main.Key),
		Location:    a.Location,
		Lock:        a.Lock,
		Substats:    make([]goodStat, 0, len(a.Subs)),
	}
	for _, s := range a.Subs {
		g.Substats = append(g.Substats, goodStat{Key: string(s.Key), Value: displayValue(s)})
	}
	return g
}

// displayValue turns stored fractions back into the percentages the game
// shows, to one decimal.
func displayValue(s artifact.Stat) float64 {
	if s.Key.Percent() {
		return math.Round(s.Value*1000) / 10
	}
	return s.Value
}

// EncodeGOOD renders records as a GOOD v1 document.
func EncodeGOOD(records []artifact.Artifact) ([]byte, error) {
	doc := goodDocument{
		Format:    goodFormat,
		Version:   goodVersion,
		Source:    goodSource,
		Artifacts: make([]goodArtifact, 0, len(records)),
	}
	for _, a := range records {
		doc.Artifacts = append(doc.Artifacts, toGOOD(a))
	}
	return json.MarshalIndent(doc, "", "  ")
}

// GOODSink writes good_<timestamp>.json into Dir.
type GOODSink struct {
	Dir string
}

func (s *GOODSink) Name() string { return "good" }

func (s *GOODSink) Export(ctx context.Context, b Batch) error {
	data, err := EncodeGOOD(b.Records)
	if err != nil {
		return fmt.Errorf("encode GOOD: %w", err)
	}
	return writeFile(s.Dir, "good_"+b.stamp()+".json", data)
}

func writeFile(dir, name string, data []byte) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
