package indexer

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"xdao.co/raforge/addr"
)

func TestLoadEventTableMappings(t *testing.T) {
	csv := strings.Join([]string{
		"event,table",
		"launchpad::sale::SaleStarted,sales",
		"launchpad::sale::SaleStarted,sale_log",
		"launchpad::sale::SaleStarted,sales", // duplicate
		"launchpad::sale::SaleEnded,sales",
		",missing_event",
		"orphan_event,",
		"short_row",
	}, "\n")

	path := filepath.Join(t.TempDir(), "mapping.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadEventTableMappings(path)
	if err != nil {
		t.Fatalf("LoadEventTableMappings: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("events: got %d want 2: %v", len(m), m)
	}
	want := []string{"sale_log", "sales"}
	if !reflect.DeepEqual(m["launchpad::sale::SaleStarted"], want) {
		t.Fatalf("tables: got %v want %v", m["launchpad::sale::SaleStarted"], want)
	}
}

func TestEnsureEventsExist(t *testing.T) {
	custom := CustomConfig{}
	EnsureEventsExist(&custom, map[string][]string{"a::b::C": {"t"}})
	if _, ok := custom.Events["a::b::C"]; !ok {
		t.Fatalf("event not inserted: %v", custom.Events)
	}

	// Existing mappings are not overwritten.
	custom.Events["a::b::C"] = EventMapping{ConstantValues: []any{"kept"}}
	EnsureEventsExist(&custom, map[string][]string{"a::b::C": {"t"}})
	if len(custom.Events["a::b::C"].ConstantValues) != 1 {
		t.Fatalf("existing mapping overwritten")
	}
}

func TestLoadDBSchema(t *testing.T) {
	csv := strings.Join([]string{
		"table,column,column_type,type,default_value,is_index,is_nullable,is_option,is_primary_key,is_vec",
		"sales,amount,u64,move_type,0,false,false,false,false,false",
		"sales,buyer,address,move_type,,true,false,false,false,false",
		"sales,tx_version,version,transaction_metadata,,false,false,false,true,false",
		"sales,active,bool,move_type,yes,false,false,false,false,false",
	}, "\n")

	path := filepath.Join(t.TempDir(), "schema.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadDBSchema(path)
	if err != nil {
		t.Fatalf("LoadDBSchema: %v", err)
	}
	sales := tables["sales"]
	if sales == nil || len(sales) != 4 {
		t.Fatalf("sales schema: %v", sales)
	}

	amount := sales["amount"]
	if amount.ColumnType.ColumnType != "u64" || amount.ColumnType.Type != "move_type" {
		t.Fatalf("amount type spec: %+v", amount.ColumnType)
	}
	if amount.DefaultValue != uint64(0) {
		t.Fatalf("amount default: %v (%T)", amount.DefaultValue, amount.DefaultValue)
	}

	buyer := sales["buyer"]
	if !buyer.IsIndex || buyer.DefaultValue != nil {
		t.Fatalf("buyer spec: %+v", buyer)
	}

	if !sales["tx_version"].IsPrimaryKey {
		t.Fatalf("tx_version should be primary key")
	}
	if sales["active"].DefaultValue != "true" {
		t.Fatalf("bool default: %v", sales["active"].DefaultValue)
	}
}

func TestLoadDBSchema_ShortRow(t *testing.T) {
	csv := "table,column\nsales,amount\n"
	path := filepath.Join(t.TempDir(), "schema.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDBSchema(path); err == nil {
		t.Fatal("expected error for short row")
	}
}

func testTables() map[string]TableSchema {
	return map[string]TableSchema{
		"sales": {
			"amount": ColumnSpec{ColumnType: ColumnTypeSpec{ColumnType: "u64", Type: "move_type"}},
			"buyer":  ColumnSpec{ColumnType: ColumnTypeSpec{ColumnType: "address", Type: "move_type"}},
			"seq":    ColumnSpec{ColumnType: ColumnTypeSpec{ColumnType: "sequence_number", Type: "event_metadata"}},
			"txv":    ColumnSpec{ColumnType: ColumnTypeSpec{ColumnType: "version", Type: "transaction_metadata"}},
		},
		"audit": {
			"who": ColumnSpec{ColumnType: ColumnTypeSpec{ColumnType: "address", Type: "move_type"}},
		},
	}
}

func testDefs() []EventDefinition {
	return []EventDefinition{
		{
			PackageName:   "launchpad",
			ModuleAddress: addr.MustParse("0x42"),
			ModuleName:    "sale",
			Name:          "SaleStarted",
			Fields: map[string]string{
				"amount":  "u64",
				"buyer":   "address",
				"comment": "vector<u8>",
			},
		},
		{
			PackageName:   "launchpad",
			ModuleAddress: addr.MustParse("0x42"),
			ModuleName:    "sale",
			Name:          "Unmapped",
			Fields:        map[string]string{"x": "u64"},
		},
	}
}

func TestGenerateProcessorConfig(t *testing.T) {
	mapping := map[string][]string{
		"launchpad::sale::SaleStarted":          {"sales"},
		"launchpad::sale::SaleStarted::comment": {"audit::who"},
	}

	res, err := GenerateProcessorConfig("testnet", 100, testDefs(), testTables(), mapping)
	if err != nil {
		t.Fatalf("GenerateProcessorConfig: %v", err)
	}

	cfg := res.Config
	if cfg.CommonConfig.Network != "testnet" || cfg.CommonConfig.StartingVersion != 100 {
		t.Fatalf("common config: %+v", cfg.CommonConfig)
	}
	if cfg.SpecIdentifier.SpecName == "" {
		t.Fatalf("spec identifier missing")
	}

	// The materialized event name keys the mapping.
	key := addr.MustParse("0x42").String() + "::sale::SaleStarted"
	ev, ok := cfg.CustomConfig.Events[key]
	if !ok {
		t.Fatalf("event %q missing: %v", key, cfg.CustomConfig.Events)
	}

	// Direct field-to-column match.
	amount := ev.EventFields["$.amount"]
	if len(amount) != 1 || amount[0].Table != "sales" || amount[0].Column != "amount" {
		t.Fatalf("amount targets: %v", amount)
	}

	// Custom mapping routes a field to another table's column.
	comment := ev.EventFields["$.comment"]
	if len(comment) != 1 || comment[0].Table != "audit" || comment[0].Column != "who" {
		t.Fatalf("comment targets: %v", comment)
	}

	// Event metadata column discovered by type spec.
	seq := ev.EventMetadata["sequence_number"]
	if len(seq) != 1 || seq[0].Column != "seq" {
		t.Fatalf("sequence_number targets: %v", seq)
	}

	// Transaction metadata discovered across all tables.
	version := cfg.CustomConfig.TransactionMetadata["version"]
	if len(version) != 1 || version[0].Table != "sales" || version[0].Column != "txv" {
		t.Fatalf("version targets: %v", version)
	}

	// Events without a table binding are reported.
	found := false
	for _, e := range res.UnmappedEvents {
		if e == "launchpad::sale::Unmapped" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unmapped events: %v", res.UnmappedEvents)
	}
}

func TestGenerateProcessorConfig_MissingTable(t *testing.T) {
	mapping := map[string][]string{
		"launchpad::sale::SaleStarted": {"ghost_table"},
	}
	if _, err := GenerateProcessorConfig("testnet", 0, testDefs()[:1], testTables(), mapping); err == nil {
		t.Fatal("expected error for missing table schema")
	}
}

func TestGenerateProcessorConfig_Deterministic(t *testing.T) {
	mapping := map[string][]string{
		"launchpad::sale::SaleStarted": {"sales"},
	}
	a, err := GenerateProcessorConfig("mainnet", 7, testDefs(), testTables(), mapping)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateProcessorConfig("mainnet", 7, testDefs(), testTables(), mapping)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("generation not deterministic")
	}
}

func TestProcessorConfig_YAMLRoundTrip(t *testing.T) {
	mapping := map[string][]string{
		"launchpad::sale::SaleStarted": {"sales"},
	}
	res, err := GenerateProcessorConfig("devnet", 1, testDefs()[:1], testTables(), mapping)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "processor.yaml")
	if err := SaveProcessorConfig(path, res.Config); err != nil {
		t.Fatalf("SaveProcessorConfig: %v", err)
	}

	loaded, err := LoadProcessorConfig(path)
	if err != nil {
		t.Fatalf("LoadProcessorConfig: %v", err)
	}
	if loaded.CommonConfig.Network != "devnet" {
		t.Fatalf("round trip network: %q", loaded.CommonConfig.Network)
	}
	if len(loaded.CustomConfig.Events) != len(res.Config.CustomConfig.Events) {
		t.Fatalf("round trip events: %d vs %d",
			len(loaded.CustomConfig.Events), len(res.Config.CustomConfig.Events))
	}
}

func TestLoadEventDefinitionsFromDir(t *testing.T) {
	dir := t.TempDir()
	body := `[
  {"package_name":"launchpad","module_address":"0x42","module_name":"sale","name":"SaleStarted","fields":{"amount":"u64"}}
]`
	if err := os.WriteFile(filepath.Join(dir, "launchpad.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadEventDefinitionsFromDir(dir)
	if err != nil {
		t.Fatalf("LoadEventDefinitionsFromDir: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("defs: got %d want 1", len(defs))
	}
	d := defs[0]
	if d.SymbolicName() != "launchpad::sale::SaleStarted" {
		t.Fatalf("symbolic name: %q", d.SymbolicName())
	}
	if !strings.HasSuffix(d.MaterializedName(), "::sale::SaleStarted") {
		t.Fatalf("materialized name: %q", d.MaterializedName())
	}
	if d.Fields["amount"] != "u64" {
		t.Fatalf("fields: %v", d.Fields)
	}
}
