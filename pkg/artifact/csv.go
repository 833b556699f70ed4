package artifact

import (
	"encoding/csv"
	"os"
	"strings"
)

func readCSV(productID, path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Artifact{}, err
	}
	if len(records) == 0 {
		return Artifact{ProductID: productID}, nil
	}

	return Artifact{
		ProductID: productID,
		Columns:   records[0],
		Rows:      records[1:],
	}, nil
}

// applyFilter selects rows per a filter expression of the form
// "column=value". An empty or malformed filter is a no-op: AS never
// silently drops rows it cannot confidently filter.
func applyFilter(a Artifact, filter string) Artifact {
	col, val, ok := strings.Cut(filter, "=")
	if !ok {
		return a
	}
	idx := -1
	for i, c := range a.Columns {
		if c == col {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a
	}

	filtered := make([][]string, 0, len(a.Rows))
	for _, row := range a.Rows {
		if idx < len(row) && row[idx] == val {
			filtered = append(filtered, row)
		}
	}

	return Artifact{ProductID: a.ProductID, Columns: a.Columns, Rows: filtered}
}
