package question

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Table is tabular data attached to a question. Cells are kept as display
// strings; numeric cells in the source are formatted without loss.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var raw struct {
		Headers []any   `json:"headers"`
		Rows    [][]any `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Headers = cells(raw.Headers)
	t.Rows = make([][]string, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		t.Rows = append(t.Rows, cells(r))
	}
	return nil
}

// Empty reports whether the table has nothing to show.
func (t *Table) Empty() bool {
	return t == nil || (len(t.Headers) == 0 && len(t.Rows) == 0)
}

func cells(vs []any) []string {
	if vs == nil {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		switch v := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
