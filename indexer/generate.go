package indexer

import (
	"fmt"
	"sort"
	"strings"
)

const (
	typeEventMetadata       = "event_metadata"
	typeTransactionMetadata = "transaction_metadata"
)

var eventMetadataFields = []string{
	"account_address",
	"creation_number",
	"event_index",
	"event_type",
	"sequence_number",
}

var transactionMetadataFields = []string{
	"block_height",
	"epoch",
	"timestamp",
	"version",
}

const (
	specCreator = "indexing@xdao.co"
	specName    = "remapping-processor"
	specVersion = "0.0.10"
)

// TableColumn names one column of one table.
type TableColumn struct {
	Table  string
	Column string
}

// GenerateResult is the output of GenerateProcessorConfig. Unmapped entries
// are reported, not fatal: an event with no table binding simply produces no
// rows.
type GenerateResult struct {
	Config          ProcessorConfig
	UnmappedEvents  []string
	UnmappedColumns []TableColumn
}

// GenerateProcessorConfig binds event definitions to table columns.
//
// For every event, each field maps to the same-named column of every mapped
// table; fields without a direct column match fall back to explicit
// "<event>::<field>" entries in eventMapping whose values are
// "table::column" pairs. Metadata columns are discovered by their
// column_type spec. Generation is deterministic for identical inputs.
func GenerateProcessorConfig(
	network string,
	startingVersion uint64,
	defs []EventDefinition,
	tables map[string]TableSchema,
	eventMapping map[string][]string,
) (GenerateResult, error) {
	mappedColumns := make(map[string]map[string]bool)
	markMapped := func(table, column string) {
		if mappedColumns[table] == nil {
			mappedColumns[table] = make(map[string]bool)
		}
		mappedColumns[table][column] = true
	}

	var unmappedEvents []string
	mappedEvents := make(map[string]EventMapping)

	for _, def := range defs {
		eventName := def.SymbolicName()

		customFields, err := customFieldTargets(eventName, eventMapping)
		if err != nil {
			return GenerateResult{}, err
		}

		mappedTables, ok := eventMapping[eventName]
		if !ok {
			unmappedEvents = append(unmappedEvents, eventName)
			continue
		}

		eventFields := make(map[string][]ColumnTarget)
		for _, field := range def.FieldNames() {
			var targets []ColumnTarget
			for _, table := range mappedTables {
				schema, ok := tables[table]
				if !ok {
					return GenerateResult{}, fmt.Errorf(
						"indexer: table schema for mapping %s -> %s not found", eventName, table)
				}
				if _, ok := schema[field]; ok {
					markMapped(table, field)
					targets = append(targets, ColumnTarget{Column: field, Table: table})
					continue
				}
				for _, target := range customFields[field] {
					schema, ok := tables[target.Table]
					if !ok {
						return GenerateResult{}, fmt.Errorf(
							"indexer: table column for mapping %s::%s -> %s::%s not found",
							eventName, field, target.Table, target.Column)
					}
					if _, ok := schema[target.Column]; !ok {
						return GenerateResult{}, fmt.Errorf(
							"indexer: table column for mapping %s::%s -> %s::%s not found",
							eventName, field, target.Table, target.Column)
					}
					markMapped(target.Table, target.Column)
					targets = append(targets, target)
				}
			}
			if len(targets) > 0 {
				eventFields["$."+field] = targets
			} else {
				unmappedEvents = append(unmappedEvents, eventName+"::"+field)
			}
		}

		eventMeta := make(map[string][]ColumnTarget)
		for _, key := range eventMetadataFields {
			var targets []ColumnTarget
			for _, table := range mappedTables {
				if column, ok := findTypedColumn(tables[table], typeEventMetadata, key); ok {
					markMapped(table, column)
					targets = append(targets, ColumnTarget{Column: column, Table: table})
				}
			}
			eventMeta[key] = targets
		}

		mappedEvents[def.MaterializedName()] = EventMapping{
			ConstantValues: []any{},
			EventFields:    eventFields,
			EventMetadata:  eventMeta,
		}
	}

	txMeta := metadataTargets(tables, typeTransactionMetadata, transactionMetadataFields, markMapped)
	eventMeta := metadataTargets(tables, typeEventMetadata, eventMetadataFields, markMapped)

	cfg := ProcessorConfig{
		SpecIdentifier: SpecIdentifier{
			SpecCreator: specCreator,
			SpecName:    specName,
			SpecVersion: specVersion,
		},
		CommonConfig: CommonConfig{
			Network:         network,
			StartingVersion: startingVersion,
		},
		CustomConfig: CustomConfig{
			DBSchema:            tables,
			Events:              mappedEvents,
			TransactionMetadata: txMeta,
			EventMetadata:       eventMeta,
		},
	}

	return GenerateResult{
		Config:          cfg,
		UnmappedEvents:  unmappedEvents,
		UnmappedColumns: unmappedTableColumns(tables, mappedColumns),
	}, nil
}

// customFieldTargets collects explicit "<event>::<field>" mapping entries
// for one event. Mapping values name "table::column" destinations.
func customFieldTargets(eventName string, eventMapping map[string][]string) (map[string][]ColumnTarget, error) {
	out := make(map[string][]ColumnTarget)
	for key, values := range eventMapping {
		rest, ok := strings.CutPrefix(key, eventName)
		if !ok || rest == "" {
			continue
		}
		field, ok := strings.CutPrefix(rest, "::")
		if !ok {
			return nil, fmt.Errorf("indexer: invalid custom event mapping %q", key)
		}
		var targets []ColumnTarget
		for _, v := range values {
			table, column, ok := strings.Cut(v, "::")
			if !ok {
				continue
			}
			targets = append(targets, ColumnTarget{Column: column, Table: table})
		}
		out[field] = targets
	}
	return out, nil
}

// findTypedColumn locates the column of schema whose type spec matches, in
// sorted column order for determinism.
func findTypedColumn(schema TableSchema, wantType, wantColumnType string) (string, bool) {
	columns := make([]string, 0, len(schema))
	for c := range schema {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	for _, c := range columns {
		spec := schema[c]
		if spec.ColumnType.Type == wantType && spec.ColumnType.ColumnType == wantColumnType {
			return c, true
		}
	}
	return "", false
}

func metadataTargets(
	tables map[string]TableSchema,
	wantType string,
	keys []string,
	markMapped func(table, column string),
) map[string][]ColumnTarget {
	tableNames := make([]string, 0, len(tables))
	for t := range tables {
		tableNames = append(tableNames, t)
	}
	sort.Strings(tableNames)

	out := make(map[string][]ColumnTarget)
	for _, key := range keys {
		var targets []ColumnTarget
		for _, table := range tableNames {
			if column, ok := findTypedColumn(tables[table], wantType, key); ok {
				markMapped(table, column)
				targets = append(targets, ColumnTarget{Column: column, Table: table})
			}
		}
		out[key] = targets
	}
	return out
}

func unmappedTableColumns(tables map[string]TableSchema, mapped map[string]map[string]bool) []TableColumn {
	var out []TableColumn
	for table, schema := range tables {
		for column := range schema {
			if !mapped[table][column] {
				out = append(out, TableColumn{Table: table, Column: column})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Column < out[j].Column
	})
	return out
}
