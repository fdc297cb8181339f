package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"artifact-scanner/src/artifact"
)

var csvHeader = []string{
	"id", "set", "slot", "rarity", "level", "main", "main_value",
	"sub1", "sub1_value", "sub2", "sub2_value", "sub3", "sub3_value", "sub4", "sub4_value",
	"location", "lock", "unknown",
}

// CSVSink writes artifacts_<timestamp>.csv into Dir, one row per record.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Export(ctx context.Context, b Batch) error {
	data, err := EncodeCSV(b.Records)
	if err != nil {
		return err
	}
	return writeFile(s.Dir, "artifacts_"+b.stamp()+".csv", data)
}

// EncodeCSV renders records with a header row. Percent values are shown as
// the game shows them.
func EncodeCSV(records []artifact.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, a := range records {
		row := []string{
			a.ID,
			string(a.Set),
			string(a.Slot),
			strconv.Itoa(a.Rarity),
			level(a),
			string(a.Main.Key),
			formatValue(a.Main),
		}
		for i := 0; i < 4; i++ {
			if i < len(a.Subs) {
				row = append(row, string(a.Subs[i].Key), formatValue(a.Subs[i]))
			} else {
				row = append(row, "", "")
			}
		}
		row = append(row, a.Location, strconv.FormatBool(a.Lock), strings.Join(a.Unknown, ";"))
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func level(a artifact.Artifact) string {
	if a.IsUnknown(artifact.FieldLevel) {
		return ""
	}
	return strconv.Itoa(a.Level)
}

func formatValue(s artifact.Stat) string {
	return strconv.FormatFloat(displayValue(s), 'f', -1, 64)
}
