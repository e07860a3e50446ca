package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	modelpkg "museumbot/internal/sim/world/kernel/model"
)

const exhibitsSchemaURL = "https://museumbot.local/schemas/exhibits.schema.json"

//go:embed exhibits.schema.json
var exhibitsSchemaJSON []byte

type Catalogs struct {
	Exhibits ExhibitCatalog
}

type ExhibitCatalog struct {
	Registry *modelpkg.Registry
	Digest   string
}

type exhibitsFile struct {
	Exhibits []modelpkg.Exhibit `json:"exhibits"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadExhibits(filepath.Join(configDir, "exhibits.json"), &c.Exhibits); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromExhibits builds catalogs from in-memory fixtures (tests, tools).
func FromExhibits(exhibits []modelpkg.Exhibit) (*Catalogs, error) {
	reg, err := modelpkg.NewRegistry(exhibits)
	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(exhibitsFile{Exhibits: exhibits})
	return &Catalogs{Exhibits: ExhibitCatalog{Registry: reg, Digest: sha256Hex(raw)}}, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadExhibits(path string, out *ExhibitCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ValidateExhibitsJSON(raw); err != nil {
		return fmt.Errorf("exhibits.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var f exhibitsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("exhibits.json: %w", err)
	}
	reg, err := modelpkg.NewRegistry(f.Exhibits)
	if err != nil {
		return fmt.Errorf("exhibits.json: %w", err)
	}
	out.Registry = reg
	return nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func exhibitsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(exhibitsSchemaURL, bytes.NewReader(exhibitsSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(exhibitsSchemaURL)
	})
	return schema, schemaErr
}

// ValidateExhibitsJSON checks raw against the embedded exhibits schema.
func ValidateExhibitsJSON(raw []byte) error {
	s, err := exhibitsSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
