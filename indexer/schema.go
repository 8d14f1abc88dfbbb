package indexer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column layout of a db_schema CSV file.
const (
	colTable = iota
	colColumn
	colColumnType
	colType
	colDefaultValue
	colIsIndex
	colIsNullable
	colIsOption
	colIsPrimaryKey
	colIsVec
	schemaColumns
)

// LoadDBSchema reads table schemas from a CSV file with a header row:
// table, column, column_type, type, default_value, is_index, is_nullable,
// is_option, is_primary_key, is_vec.
func LoadDBSchema(path string) (map[string]TableSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: open CSV %s: %w", path, err)
	}
	defer f.Close()
	return readDBSchema(f)
}

func readDBSchema(r io.Reader) (map[string]TableSchema, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true

	tables := make(map[string]TableSchema)
	first := true
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("indexer: parse CSV row: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(rec) < schemaColumns {
			return nil, fmt.Errorf("indexer: schema row needs %d cells, got %d", schemaColumns, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		typeSpec := ColumnTypeSpec{
			ColumnType: rec[colColumnType],
			Type:       rec[colType],
		}
		spec := ColumnSpec{
			ColumnType:   typeSpec,
			DefaultValue: parseDefaultValue(rec[colDefaultValue], typeSpec),
			IsIndex:      parseBool(rec[colIsIndex]),
			IsNullable:   parseBool(rec[colIsNullable]),
			IsOption:     parseBool(rec[colIsOption]),
			IsPrimaryKey: parseBool(rec[colIsPrimaryKey]),
			IsVec:        parseBool(rec[colIsVec]),
		}

		table := rec[colTable]
		if tables[table] == nil {
			tables[table] = TableSchema{}
		}
		tables[table][rec[colColumn]] = spec
	}
	return tables, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true
	default:
		return false
	}
}

// parseDefaultValue interprets a default cell according to the column's type
// spec: numeric kinds become uint64 where possible, booleans normalize to
// the strings "true"/"false", everything else stays a string.
func parseDefaultValue(s string, typeSpec ColumnTypeSpec) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	switch typeSpec.Type {
	case "move_type":
		switch typeSpec.ColumnType {
		case "u8", "u16", "u32", "u64":
			if n, err := strconv.ParseUint(s, 10, 64); err == nil {
				return n
			}
			return s
		case "bool":
			if parseBool(s) {
				return "true"
			}
			return "false"
		case "address":
			return s
		}
	case "transaction_metadata":
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
		return s
	case "event_metadata":
		switch typeSpec.ColumnType {
		case "creation_number", "sequence_number", "event_index":
			if n, err := strconv.ParseUint(s, 10, 64); err == nil {
				return n
			}
			return s
		}
	}
	return s
}
