package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/addr"
	"xdao.co/raforge/artifact"
	"xdao.co/raforge/indexer"
	"xdao.co/raforge/keys"
	"xdao.co/raforge/plan"
	"xdao.co/raforge/planfile"
	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/bundle"
	"xdao.co/raforge/storage/storereg"

	_ "xdao.co/raforge/storage/grpcstore"
	_ "xdao.co/raforge/storage/localfs"
	_ "xdao.co/raforge/storage/memstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "address":
		return cmdAddress(args[1:], out, errOut)
	case "artifact":
		return cmdArtifact(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "indexer":
		return cmdIndexer(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "plan":
		return cmdPlan(args[1:], out, errOut)
	case "store":
		return cmdStore(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "raforge: deterministic code-holder provisioning toolkit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  raforge address --origin <0xaddr> (--seed <string> | --seed-hex <hex>) [--object]")
	fmt.Fprintln(w, "  raforge artifact pack --name <pkg> --metadata <file> --module <file> [--module ...] [--out <file>]")
	fmt.Fprintln(w, "  raforge artifact cid <file>")
	fmt.Fprintln(w, "  raforge bundle export --out <tar> [--backend ...] <cid> [<cid> ...]")
	fmt.Fprintln(w, "  raforge bundle import [--backend ...] <tar>")
	fmt.Fprintln(w, "  raforge indexer generate --events-dir <dir> --schema <csv> --mapping <csv> --network <n> --starting-version <v> --out <yaml>")
	fmt.Fprintln(w, "  raforge key init --publisher <name> [--seed-hex <64hex> | --mnemonic <words>] [--force]")
	fmt.Fprintln(w, "  raforge key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  raforge key list")
	fmt.Fprintln(w, "  raforge key export --publisher <name> [--role <role>]")
	fmt.Fprintln(w, "  raforge plan addresses --plan <deploy.toml>")
	fmt.Fprintln(w, "  raforge plan order --plan <deploy.toml> <package-path>")
	fmt.Fprintln(w, "  raforge plan payloads --plan <deploy.toml> --cids <json> --out-dir <dir> [--backend ...]")
	fmt.Fprintln(w, "  raforge store put [--backend ...] <file>")
	fmt.Fprintln(w, "  raforge store get [--backend ...] <cid> [--out <file>]")
	fmt.Fprintln(w, "  raforge store has [--backend ...] <cid>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - store-backed commands accept --backend plus backend flags (--localfs-dir, --grpc-target, ...)")
	fmt.Fprintln(w, "  - --cids is a JSON object mapping plan package paths to artifact CIDs")
	fmt.Fprintln(w, "  - key files live under ~/.raforge/keys/<publisher> (0600 seed files)")
}

func cmdAddress(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("address", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var origin string
	var seed string
	var seedHex string
	var object bool

	fs.StringVar(&origin, "origin", "", "Origin account address (0x-hex)")
	fs.StringVar(&seed, "seed", "", "Derivation seed as a UTF-8 string")
	fs.StringVar(&seedHex, "seed-hex", "", "Derivation seed as hex bytes")
	fs.BoolVar(&object, "object", false, "Use the named-object derivation scheme")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if origin == "" {
		fmt.Fprintln(errOut, "missing --origin")
		return 2
	}
	if (seed == "") == (seedHex == "") {
		fmt.Fprintln(errOut, "need exactly one of --seed or --seed-hex")
		return 2
	}

	originAddr, err := addr.Parse(origin)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --origin: %v\n", err)
		return 2
	}

	seedBytes := []byte(seed)
	if seedHex != "" {
		seedBytes, err = hex.DecodeString(strings.TrimPrefix(seedHex, "0x"))
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	}

	derived := addr.Derive(originAddr, seedBytes)
	if object {
		derived = addr.DeriveNamedObject(originAddr, seedBytes)
	}
	_, _ = fmt.Fprintln(out, derived)
	return 0
}

func cmdArtifact(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: raforge artifact <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: pack, cid")
		return 2
	}
	switch args[0] {
	case "pack":
		return cmdArtifactPack(args[1:], out, errOut)
	case "cid":
		fs := flag.NewFlagSet("artifact cid", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: raforge artifact cid <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, artifact.CIDString(b))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown artifact subcommand: %s\n", args[0])
		return 2
	}
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdArtifactPack(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("artifact pack", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var metadataPath string
	var outPath string
	var modulePaths stringList

	fs.StringVar(&name, "name", "", "Package name")
	fs.StringVar(&metadataPath, "metadata", "", "Package metadata file")
	fs.StringVar(&outPath, "out", "", "Output file (default: stdout)")
	fs.Var(&modulePaths, "module", "Module bytecode file (repeatable, order preserved)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if metadataPath == "" {
		fmt.Fprintln(errOut, "missing --metadata")
		return 2
	}
	if len(modulePaths) == 0 {
		fmt.Fprintln(errOut, "missing --module")
		return 2
	}

	metadata, err := os.ReadFile(metadataPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --metadata: %v\n", err)
		return 1
	}
	modules := make([][]byte, 0, len(modulePaths))
	for _, p := range modulePaths {
		b, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(errOut, "read --module %s: %v\n", p, err)
			return 1
		}
		modules = append(modules, b)
	}

	enc := artifact.Encode(artifact.Artifact{Name: name, Metadata: metadata, Modules: modules})
	fmt.Fprintf(errOut, "Artifact-CID: %s\n", artifact.CIDString(enc))

	if outPath == "" {
		_, _ = out.Write(enc)
		return 0
	}
	if err := os.WriteFile(outPath, enc, 0o644); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}
	return 0
}

type storeHandle struct {
	Store storage.Store
	close func() error
}

func openStore(fs *flag.FlagSet, backend string) (storeHandle, int) {
	s, closeFn, err := storereg.Open(backend, storereg.UsageCLI)
	if err != nil {
		fmt.Fprintln(fs.Output(), err)
		return storeHandle{}, 2
	}
	return storeHandle{Store: s, close: closeFn}, 0
}

func (h storeHandle) Close() {
	if h.close != nil {
		_ = h.close()
	}
}

func cmdStore(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: raforge store <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get, has")
		return 2
	}
	sub := args[0]

	fs := flag.NewFlagSet("store "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend := fs.String("backend", "localfs", "artifact store backend name")
	outPath := fs.String("out", "", "Output file for get (default: stdout)")
	storereg.RegisterFlags(fs, storereg.UsageCLI)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(errOut, "usage: raforge store %s [--backend ...] <arg>\n", sub)
		return 2
	}

	h, code := openStore(fs, *backend)
	if code != 0 {
		return code
	}
	defer h.Close()

	switch sub {
	case "put":
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read: %v\n", err)
			return 1
		}
		id, err := h.Store.Put(b)
		if err != nil {
			fmt.Fprintf(errOut, "put: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, id)
		return 0
	case "get":
		id, err := cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 2
		}
		b, err := h.Store.Get(id)
		if err != nil {
			fmt.Fprintf(errOut, "get: %v\n", err)
			return 1
		}
		if *outPath == "" {
			_, _ = out.Write(b)
			return 0
		}
		if err := os.WriteFile(*outPath, b, 0o644); err != nil {
			fmt.Fprintf(errOut, "write --out: %v\n", err)
			return 1
		}
		return 0
	case "has":
		id, err := cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 2
		}
		if !h.Store.Has(id) {
			_, _ = fmt.Fprintln(out, "false")
			return 1
		}
		_, _ = fmt.Fprintln(out, "true")
		return 0
	default:
		fmt.Fprintf(errOut, "unknown store subcommand: %s\n", sub)
		return 2
	}
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: raforge bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	sub := args[0]

	fs := flag.NewFlagSet("bundle "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend := fs.String("backend", "localfs", "artifact store backend name")
	outPath := fs.String("out", "", "Output bundle file (export)")
	storereg.RegisterFlags(fs, storereg.UsageCLI)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	h, code := openStore(fs, *backend)
	if code != 0 {
		return code
	}
	defer h.Close()

	switch sub {
	case "export":
		if *outPath == "" || fs.NArg() == 0 {
			fmt.Fprintln(errOut, "usage: raforge bundle export --out <tar> <cid> [<cid> ...]")
			return 2
		}
		ids := make([]cid.Cid, 0, fs.NArg())
		for _, s := range fs.Args() {
			id, err := cid.Decode(s)
			if err != nil {
				fmt.Fprintf(errOut, "invalid cid %q: %v\n", s, err)
				return 2
			}
			ids = append(ids, id)
		}
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(errOut, "create --out: %v\n", err)
			return 1
		}
		if err := bundle.Export(f, h.Store, ids, bundle.ExportOptions{IncludeManifest: true}); err != nil {
			_ = f.Close()
			fmt.Fprintf(errOut, "export: %v\n", err)
			return 1
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(errOut, "close --out: %v\n", err)
			return 1
		}
		fmt.Fprintf(errOut, "Exported %d artifacts to %s\n", len(ids), *outPath)
		return 0
	case "import":
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: raforge bundle import <tar>")
			return 2
		}
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "open: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := bundle.Import(f, h.Store); err != nil {
			fmt.Fprintf(errOut, "import: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, "OK")
		return 0
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", sub)
		return 2
	}
}

func cmdPlan(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: raforge plan <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: addresses, order, payloads")
		return 2
	}
	switch args[0] {
	case "addresses":
		return cmdPlanAddresses(args[1:], out, errOut)
	case "order":
		return cmdPlanOrder(args[1:], out, errOut)
	case "payloads":
		return cmdPlanPayloads(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown plan subcommand: %s\n", args[0])
		return 2
	}
}

func loadPlanEnv(planPath string, errOut io.Writer) (*plan.Env, int) {
	if planPath == "" {
		fmt.Fprintln(errOut, "missing --plan")
		return nil, 2
	}
	p, err := planfile.Load(planPath)
	if err != nil {
		fmt.Fprintf(errOut, "load plan: %v\n", err)
		return nil, 1
	}
	env, err := plan.NewEnv(p)
	if err != nil {
		fmt.Fprintf(errOut, "resolve plan: %v\n", err)
		return nil, 1
	}
	return env, 0
}

func cmdPlanAddresses(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("plan addresses", flag.ContinueOnError)
	fs.SetOutput(errOut)
	planPath := fs.String("plan", "deploy.toml", "Plan file (TOML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env, code := loadPlanEnv(*planPath, errOut)
	if code != 0 {
		return code
	}

	named := env.NamedAddresses()
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s = %s\n", name, named[name])
	}
	return 0
}

func cmdPlanOrder(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("plan order", flag.ContinueOnError)
	fs.SetOutput(errOut)
	planPath := fs.String("plan", "deploy.toml", "Plan file (TOML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: raforge plan order --plan <deploy.toml> <package-path>")
		return 2
	}

	env, code := loadPlanEnv(*planPath, errOut)
	if code != 0 {
		return code
	}

	order, ok := env.DeployOrder(fs.Arg(0))
	if !ok {
		fmt.Fprintf(errOut, "package not in plan: %s\n", fs.Arg(0))
		return 1
	}
	_, _ = fmt.Fprintln(out, order)
	return 0
}

func cmdPlanPayloads(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("plan payloads", flag.ContinueOnError)
	fs.SetOutput(errOut)
	planPath := fs.String("plan", "deploy.toml", "Plan file (TOML)")
	cidsPath := fs.String("cids", "", "JSON file mapping package paths to artifact CIDs")
	outDir := fs.String("out-dir", "./deployments", "Directory to write payload JSON files into")
	backend := fs.String("backend", "localfs", "artifact store backend name")
	storereg.RegisterFlags(fs, storereg.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *cidsPath == "" {
		fmt.Fprintln(errOut, "missing --cids")
		return 2
	}

	env, code := loadPlanEnv(*planPath, errOut)
	if code != 0 {
		return code
	}

	cids, err := loadCIDMap(*cidsPath)
	if err != nil {
		fmt.Fprintf(errOut, "load --cids: %v\n", err)
		return 1
	}

	h, code := openStore(fs, *backend)
	if code != 0 {
		return code
	}
	defer h.Close()

	src := plan.StoreSource{Store: h.Store, CIDs: cids}
	n, err := env.WritePayloads(src, *outDir)
	if err != nil {
		fmt.Fprintf(errOut, "build payloads: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Wrote %d publish payload JSON files to %s\n", n, *outDir)
	return 0
}

func loadCIDMap(path string) (map[string]cid.Cid, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]cid.Cid, len(raw))
	for p, s := range raw {
		id, err := cid.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("bad CID for %q: %w", p, err)
		}
		out[p] = id
	}
	return out, nil
}

func cmdIndexer(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "generate" {
		fmt.Fprintln(errOut, "usage: raforge indexer generate ...")
		return 2
	}

	fs := flag.NewFlagSet("indexer generate", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var eventsDir string
	var schemaPath string
	var mappingPath string
	var network string
	var startingVersion uint64
	var outPath string

	fs.StringVar(&eventsDir, "events-dir", "", "Directory of event definition JSON files")
	fs.StringVar(&schemaPath, "schema", "", "DB schema CSV file")
	fs.StringVar(&mappingPath, "mapping", "", "Event-to-table mapping CSV file")
	fs.StringVar(&network, "network", "mainnet", "Target network name")
	fs.Uint64Var(&startingVersion, "starting-version", 0, "Processor starting version")
	fs.StringVar(&outPath, "out", "processor-config.yaml", "Output YAML file")

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if eventsDir == "" || schemaPath == "" || mappingPath == "" {
		fmt.Fprintln(errOut, "missing --events-dir, --schema, or --mapping")
		return 2
	}

	defs, err := indexer.LoadEventDefinitionsFromDir(eventsDir)
	if err != nil {
		fmt.Fprintf(errOut, "load events: %v\n", err)
		return 1
	}
	tables, err := indexer.LoadDBSchema(schemaPath)
	if err != nil {
		fmt.Fprintf(errOut, "load schema: %v\n", err)
		return 1
	}
	mapping, err := indexer.LoadEventTableMappings(mappingPath)
	if err != nil {
		fmt.Fprintf(errOut, "load mapping: %v\n", err)
		return 1
	}

	res, err := indexer.GenerateProcessorConfig(network, startingVersion, defs, tables, mapping)
	if err != nil {
		fmt.Fprintf(errOut, "generate: %v\n", err)
		return 1
	}
	if err := indexer.SaveProcessorConfig(outPath, res.Config); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}

	for _, e := range res.UnmappedEvents {
		fmt.Fprintf(errOut, "Warning: unmapped event %s\n", e)
	}
	for _, c := range res.UnmappedColumns {
		fmt.Fprintf(errOut, "Warning: column %s.%s is not mapped by any event or metadata\n", c.Table, c.Column)
	}
	fmt.Fprintf(out, "Wrote processor config to %s\n", outPath)
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "raforge key: minimal local publisher key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  raforge key init --publisher <name> [--seed-hex <64hex> | --mnemonic <words>] [--force]")
	fmt.Fprintln(w, "  raforge key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  raforge key list")
	fmt.Fprintln(w, "  raforge key export --publisher <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var publisher string
	var seedHex string
	var mnemonic string
	var force bool

	fs.StringVar(&publisher, "publisher", "", "Publisher name (directory under ~/.raforge/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars")
	fs.StringVar(&mnemonic, "mnemonic", "", "Optional BIP-39 mnemonic to derive the seed from")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if publisher == "" {
		fmt.Fprintln(errOut, "missing --publisher")
		return 2
	}
	if err := keys.CheckPublisherName(publisher); err != nil {
		fmt.Fprintf(errOut, "invalid --publisher: %v\n", err)
		return 2
	}
	if seedHex != "" && mnemonic != "" {
		fmt.Fprintln(errOut, "conflicting flags: --seed-hex cannot be combined with --mnemonic")
		return 2
	}
	ks, err := keys.OpenKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	switch {
	case seedHex != "":
		seed, err = keys.ParseSeedHex(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	case mnemonic != "":
		seed, err = keys.SeedFromMnemonic(mnemonic, "")
		if err != nil {
			fmt.Fprintf(errOut, "invalid --mnemonic: %v\n", err)
			return 2
		}
	default:
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	publisherKey, rootPath, err := ks.InitializeRootKey(publisher, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	account, err := keys.AccountAddressFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "account address: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", publisherKey)
	fmt.Fprintf(out, "Account address: %s\n", account)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root publisher name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. operator, deployer)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckPublisherName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.OpenKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	publisherKey, rolePath, err := ks.DeriveRoleKey(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", publisherKey)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var publisher string
	var role string

	fs.StringVar(&publisher, "publisher", "", "Publisher name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports the derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if publisher == "" {
		fmt.Fprintln(errOut, "missing --publisher")
		return 2
	}
	if err := keys.CheckPublisherName(publisher); err != nil {
		fmt.Fprintf(errOut, "invalid --publisher: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.OpenKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	publisherKey, err := ks.ExportKey(publisher, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, publisherKey)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.OpenKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Publisher)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}
