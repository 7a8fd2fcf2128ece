package recordstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var csvColumns = []string{"id", "type", "data", "global"}

// ImportCSV inserts one record per CSV row and returns how many were
// written. Without a header the columns are id, type, data and optionally
// global. With a header they may come in any order, and id and global may be
// left out. A blank id gets a random one. Rows are inserted one at a time,
// so rows before a failing one stay written.
func ImportCSV(ctx context.Context, repo *Repository, in io.Reader, withHeader bool) (int, error) {
	rd := csv.NewReader(in)
	rd.FieldsPerRecord = -1

	colMap := map[string]int{"id": 0, "type": 1, "data": 2, "global": 3}
	if withHeader {
		line, err := rd.Read()
		if err != nil {
			return 0, fmt.Errorf("read csv header: %w", err)
		}

		colMap = make(map[string]int)
		for i, col := range line {
			name := strings.ToLower(strings.TrimSpace(col))
			if !SliceContains(csvColumns, name) {
				return 0, fmt.Errorf("csv header: unknown column %q", col)
			}
			colMap[name] = i
		}

		for _, required := range []string{"type", "data"} {
			if _, ok := colMap[required]; !ok {
				return 0, fmt.Errorf("csv header: column %q is required", required)
			}
		}
	}

	field := func(line []string, name string) string {
		i, ok := colMap[name]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	count := 0
	for {
		line, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}

		req, err := csvInsertRequest(field, line)
		if err != nil {
			return count, fmt.Errorf("csv row %d: %w", count+1, err)
		}

		if err := repo.Insert(ctx, req); err != nil {
			return count, fmt.Errorf("csv row %d: %w", count+1, err)
		}
		count++
	}

	return count, nil
}

func csvInsertRequest(field func([]string, string) string, line []string) (InsertRequest, error) {
	req := InsertRequest{
		Type: field(line, "type"),
		Data: field(line, "data"),
	}

	if s := field(line, "id"); s != "" {
		id, err := ParseID(s)
		if err != nil {
			return InsertRequest{}, err
		}
		req.ID = id
	} else {
		req.ID = uuid.New()
	}

	if s := field(line, "global"); s != "" {
		global, err := strconv.ParseBool(s)
		if err != nil {
			return InsertRequest{}, invalidArgument("global", "%q is not a boolean", s)
		}
		req.Global = global
	}

	return req, nil
}
