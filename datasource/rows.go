package datasource

import (
	"github.com/tidwall/gjson"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
)

// ParseRows decodes a JSON array of objects into a dataset. Column order is
// the order in which keys first appear, so it starts with the first
// object's key order. dataPath, when set, is a gjson path to the array.
func ParseRows(data []byte, dataPath string) (chart.Dataset, error) {
	if len(data) == 0 {
		return chart.NewDataset(nil, nil), nil
	}
	if !gjson.ValidBytes(data) {
		return chart.Dataset{}, errors.Wrap(errors.ErrInvalidRequest, "data is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if dataPath != "" {
		root = root.Get(dataPath)
		if !root.Exists() {
			return chart.Dataset{}, errors.Wrapf(errors.ErrInvalidRequest, "data path %q not found", dataPath)
		}
	}
	if !root.IsArray() {
		return chart.Dataset{}, errors.WithHint(
			errors.Wrap(errors.ErrInvalidRequest, "expected a JSON array of objects"),
			"set dataPath to the array inside the response")
	}

	columns := []string{}
	seen := map[string]bool{}
	rows := []chart.Row{}

	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		row := chart.Row{}
		item.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			row[name] = scalar(value)
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
			return true
		})
		rows = append(rows, row)
		return true
	})

	return chart.NewDataset(columns, rows), nil
}

// scalar keeps nested objects and arrays as their raw JSON text.
func scalar(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.Str
	}
	return v.Raw
}
