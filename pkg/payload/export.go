/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type column struct {
	name  string
	value string
}

// ExportTSV flattens both forms into a two-line tab-separated table. Nested keys are joined with "_"
// under the prefixes form11 and form2, arrays are written as JSON and null values as empty cells.
func ExportTSV(form11, form2 interface{}) (string, error) {
	var columns []column

	for _, f := range []struct {
		prefix string
		form   interface{}
	}{{"form11", form11}, {"form2", form2}} {
		raw, err := json.Marshal(f.form)
		if err != nil {
			return "", fmt.Errorf("failed to marshal %s: %w", f.prefix, err)
		}

		if columns, err = flatten(raw, f.prefix, columns); err != nil {
			return "", fmt.Errorf("failed to flatten %s: %w", f.prefix, err)
		}
	}

	headers := make([]string, len(columns))
	values := make([]string, len(columns))

	cleaner := strings.NewReplacer("\t", " ", "\n", " ")

	for i, c := range columns {
		headers[i] = c.name
		values[i] = cleaner.Replace(c.value)
	}

	return strings.Join(headers, "\t") + "\n" + strings.Join(values, "\t"), nil
}

// flatten appends one column per scalar in the JSON object raw, keeping the key order of the document.
func flatten(raw json.RawMessage, prefix string, columns []column) ([]column, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyToken)
		}

		if prefix != "" {
			key = prefix + "_" + key
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		value = bytes.TrimSpace(value)

		switch {
		case bytes.Equal(value, []byte("null")):
			columns = append(columns, column{name: key})
		case value[0] == '{':
			if columns, err = flatten(value, key, columns); err != nil {
				return nil, err
			}
		case value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, err
			}

			columns = append(columns, column{name: key, value: s})
		default:
			var compact bytes.Buffer
			if err := json.Compact(&compact, value); err != nil {
				return nil, err
			}

			columns = append(columns, column{name: key, value: compact.String()})
		}
	}

	return columns, nil
}
