package model

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// scanRecords материализует строки результата в []Record по именам колонок
// из описания выборки. Алиасы JOIN-проекций (`refN.col AS x_name`) приходят
// сюда уже под итоговыми именами extended-полей.
func scanRecords(rows pgx.Rows) ([]Record, error) {
	if rows == nil {
		return nil, fmt.Errorf("rows is nil")
	}
	descs := rows.FieldDescriptions()
	names := make([]string, len(descs))
	for i, fd := range descs {
		names[i] = fd.Name
	}

	out := make([]Record, 0, 16)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		n := len(vals)
		if len(names) < n {
			n = len(names)
		}
		row := make(Record, n)
		for i := 0; i < n; i++ {
			row[names[i]] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
