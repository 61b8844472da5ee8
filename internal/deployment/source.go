package deployment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/gameconfig-bootstrap/internal/environment"
)

// Document is the raw, unvalidated content of a deployment config source.
type Document struct {
	RPCURL             string `yaml:"rpc_url"`
	USDTMint           string `yaml:"usdt_mint"`
	HANMint            string `yaml:"han_mint"`
	DeployerWalletPath string `yaml:"deployer_wallet_path"`
	RoundNumber        uint64 `yaml:"round_number"`
}

// Source provides the deployment config document for one environment.
type Source interface {
	// Name identifies the source in error messages, e.g. a file path.
	Name() string
	// Read returns the document. A source that does not exist must return
	// an error wrapping fs.ErrNotExist.
	Read() (Document, error)
}

// Registry maps each environment to its config source.
type Registry map[environment.Environment]Source

// FileSource reads a YAML document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return s.Path
}

func (s FileSource) Read() (Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: parse %s: %v", ErrConfigInvalid, s.Path, err)
	}
	return doc, nil
}

// StaticSource serves a document held in memory.
type StaticSource struct {
	Label string
	Doc   Document
}

func (s StaticSource) Name() string {
	return s.Label
}

func (s StaticSource) Read() (Document, error) {
	return s.Doc, nil
}

// FileRegistry registers <dir>/<env>.yaml for every canonical environment.
func FileRegistry(dir string) Registry {
	registry := make(Registry, len(environment.All()))
	for _, env := range environment.All() {
		registry[env] = FileSource{Path: expectedFile(dir, env)}
	}
	return registry
}

func expectedFile(dir string, env environment.Environment) string {
	return filepath.Join(dir, env.String()+".yaml")
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
