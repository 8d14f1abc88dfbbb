// Package payload renders entry-function call payloads as JSON.
//
// The rendered shape matches what transaction submission tooling expects:
// a fully qualified function id, explicit type arguments, and hex-encoded
// byte arguments.
package payload

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"xdao.co/raforge/addr"
)

// DeployFunction is the entry function that publishes code to a derived
// holder account.
const DeployFunction = "ra_code_deployment::deploy"

type EntryFunction struct {
	FunctionID string   `json:"function_id"`
	TypeArgs   []string `json:"type_args"`
	Args       []Arg    `json:"args"`
}

// Arg is one typed entry-function argument. Value is either a hex string or
// a list of hex strings.
type Arg struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// NewDeploy builds the publish payload for one package.
//
// The deployment address hosts the deploy entry function. Seed, metadata,
// and each module are hex-encoded; modules keep their input order.
func NewDeploy(deployment addr.Address, seed string, metadata []byte, modules [][]byte) EntryFunction {
	moduleHex := make([]string, 0, len(modules))
	for _, m := range modules {
		moduleHex = append(moduleHex, Hex(m))
	}
	return EntryFunction{
		FunctionID: fmt.Sprintf("%s::%s", deployment, DeployFunction),
		TypeArgs:   []string{},
		Args: []Arg{
			{Type: "hex", Value: Hex([]byte(seed))},
			{Type: "hex", Value: Hex(metadata)},
			{Type: "hex", Value: moduleHex},
		},
	}
}

// Hex renders b as a 0x-prefixed lowercase hex string.
func Hex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// Marshal renders the payload as indented JSON with a trailing newline.
func (e EntryFunction) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// FileName is the output file name for one package payload. The global
// deploy-order index prefix keeps directory listings in publish order.
func FileName(deployOrder int, packageName string) string {
	return fmt.Sprintf("%d-%s-publish.json", deployOrder, packageName)
}

// WriteFile renders the payload into dir using the deploy-order file name.
func (e EntryFunction) WriteFile(dir string, deployOrder int, packageName string) (string, error) {
	b, err := e.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(deployOrder, packageName))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
