package indexer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// LoadEventTableMappings reads an event-to-table mapping from a CSV file.
//
// The first row is treated as a header and skipped. Each remaining row binds
// one event name (column 0) to one table name (column 1); rows with missing
// cells are skipped. Table lists are deduplicated and sorted.
func LoadEventTableMappings(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: open CSV %s: %w", path, err)
	}
	defer f.Close()
	return readEventTableMappings(f)
}

func readEventTableMappings(r io.Reader) (map[string][]string, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true

	out := make(map[string][]string)
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
		if len(rec) < 2 {
			continue
		}
		event := strings.TrimSpace(rec[0])
		table := strings.TrimSpace(rec[1])
		if event == "" || table == "" {
			continue
		}
		if !contains(out[event], table) {
			out[event] = append(out[event], table)
		}
	}

	for _, tables := range out {
		sort.Strings(tables)
	}
	return out, nil
}

// EnsureEventsExist inserts an empty event mapping for every event named in
// mapping that the config does not know yet.
func EnsureEventsExist(custom *CustomConfig, mapping map[string][]string) {
	if custom.Events == nil {
		custom.Events = make(map[string]EventMapping)
	}
	for event := range mapping {
		if _, ok := custom.Events[event]; !ok {
			custom.Events[event] = EventMapping{
				ConstantValues: []any{},
				EventFields:    map[string][]ColumnTarget{},
				EventMetadata:  map[string][]ColumnTarget{},
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
