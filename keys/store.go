package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a local-first key store for publisher seeds.
//
// Keys are Ed25519 only, stored as hex seed files on the local filesystem,
// one directory per publisher with deterministic role subkeys.
type KeyStore struct {
	Directory string
}

// KeyEntry is one publisher with its derived role keys.
type KeyEntry struct {
	Publisher string
	Roles     []string
}

func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".raforge", "keys"), nil
}

func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootKeyPath(publisher string) string {
	return filepath.Join(ks.Directory, publisher, "root.key")
}

func (ks *KeyStore) roleKeyPath(publisher, role string) string {
	return filepath.Join(ks.Directory, publisher, "roles", role+".key")
}

func CheckPublisherName(publisher string) error {
	if publisher == "" {
		return errors.New("publisher name cannot be empty")
	}
	return checkIdentifier("publisher name", publisher)
}

func CheckRole(role string) error {
	if role == "" {
		return errors.New("role cannot be empty")
	}
	return checkIdentifier("role", role)
}

func checkIdentifier(what, s string) error {
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in %s", char, what)
	}
	return nil
}

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (ks *KeyStore) saveSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitializeRootKey stores seed as the root key of publisher and returns the
// publisher key string plus the file path.
func (ks *KeyStore) InitializeRootKey(publisher string, seed []byte, overwrite bool) (publisherKey string, path string, err error) {
	if err := CheckPublisherName(publisher); err != nil {
		return "", "", err
	}
	path = ks.rootKeyPath(publisher)
	if err := ks.saveSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return PublisherKeyFromSeed(seed), path, nil
}

// DeriveRoleKey derives and stores the role subkey of publisher.
func (ks *KeyStore) DeriveRoleKey(publisher, role string, overwrite bool) (publisherKey string, path string, err error) {
	if err := CheckPublisherName(publisher); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := ks.loadSeed(ks.rootKeyPath(publisher))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = ks.roleKeyPath(publisher, role)
	if err := ks.saveSeed(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	return PublisherKeyFromSeed(roleSeed), path, nil
}

// ExportKey returns the publisher key string for a stored root or role key.
func (ks *KeyStore) ExportKey(publisher, role string) (string, error) {
	if err := CheckPublisherName(publisher); err != nil {
		return "", err
	}
	var seed []byte
	var err error
	if role == "" {
		seed, err = ks.loadSeed(ks.rootKeyPath(publisher))
	} else {
		if err := CheckRole(role); err != nil {
			return "", err
		}
		seed, err = ks.loadSeed(ks.roleKeyPath(publisher, role))
	}
	if err != nil {
		return "", err
	}
	return PublisherKeyFromSeed(seed), nil
}

// LoadSeed resolves a signing seed from the first provided source: literal
// hex, an explicit key file, or a stored publisher root or role key.
func (ks *KeyStore) LoadSeed(seedHex, publisher, role, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return ks.loadSeed(keyFile)
	}
	if publisher != "" {
		if err := CheckPublisherName(publisher); err != nil {
			return nil, err
		}
		if role == "" {
			return ks.loadSeed(ks.rootKeyPath(publisher))
		}
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		return ks.loadSeed(ks.roleKeyPath(publisher, role))
	}
	return nil, errors.New("no signer provided")
}

// ListKeys enumerates stored publishers and their role keys.
func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var publishers []string
	for _, entry := range entries {
		if entry.IsDir() {
			publishers = append(publishers, entry.Name())
		}
	}
	sort.Strings(publishers)

	var result []KeyEntry
	for _, publisher := range publishers {
		rolesDir := filepath.Join(ks.Directory, publisher, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, KeyEntry{Publisher: publisher, Roles: roles})
	}
	return result, nil
}
