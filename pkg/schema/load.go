package schema

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option configures a Load call.
type Option func(*config)

type config struct {
	fsys  fs.FS
	data  []byte
	comma rune
}

// WithFS supplies the filesystem backing an fs Source.
func WithFS(fsys fs.FS) Option {
	return func(cfg *config) {
		cfg.fsys = fsys
	}
}

// WithData supplies the payload backing a bytes Source.
func WithData(data []byte) Option {
	return func(cfg *config) {
		cfg.data = data
	}
}

// WithComma overrides the CSV field separator. The pipeline's parameter
// tables use `;` so descriptions can contain commas; that is the default.
func WithComma(comma rune) Option {
	return func(cfg *config) {
		if comma != 0 {
			cfg.comma = comma
		}
	}
}

// Load reads a parameter table from the supplied source. YAML documents are
// detected by extension (.yaml/.yml); everything else parses as CSV.
func Load(src Source, options ...Option) ([]Row, error) {
	if src == nil {
		return nil, errors.New("schema: source is required")
	}
	cfg := &config{comma: ';'}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	data, err := readSource(src, cfg)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schema: %s is empty", src.Location())
	}

	switch strings.ToLower(filepath.Ext(src.Location())) {
	case ".yaml", ".yml":
		return parseYAML(data, src.Location())
	default:
		return parseCSV(data, src.Location(), cfg.comma)
	}
}

func readSource(src Source, cfg *config) ([]byte, error) {
	switch src.Kind() {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindFS:
		if cfg.fsys == nil {
			return nil, errors.New("schema: fs source requires WithFS")
		}
		data, err := fs.ReadFile(cfg.fsys, src.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindBytes:
		if cfg.data == nil {
			return nil, errors.New("schema: bytes source requires WithData")
		}
		return cfg.data, nil
	default:
		return nil, fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
}

var csvColumns = []string{"key", "alias", "group", "default", "unit", "description", "gui_type", "gui_args"}

func parseCSV(data []byte, location string, comma rune) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", location, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"key", "default", "gui_type"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("schema: %s is missing the %q column", location, required)
		}
	}

	column := func(record []string, name string) string {
		idx, ok := index[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("schema: parse %s line %d: %w", location, line, err)
		}
		if len(record) == 0 || column(record, "key") == "" {
			continue
		}
		rows = append(rows, Row{
			Key:         column(record, "key"),
			Alias:       column(record, "alias"),
			Group:       column(record, "group"),
			Default:     column(record, "default"),
			Unit:        column(record, "unit"),
			Description: column(record, "description"),
			GUIType:     column(record, "gui_type"),
			GUIArgs:     column(record, "gui_args"),
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("schema: %s contains no parameter rows", location)
	}
	return rows, nil
}

type yamlDocument struct {
	Parameters []yamlRow `yaml:"parameters"`
}

type yamlRow struct {
	Key         string `yaml:"key"`
	Alias       string `yaml:"alias"`
	Group       string `yaml:"group"`
	Default     string `yaml:"default"`
	Unit        string `yaml:"unit"`
	Description string `yaml:"description"`
	GUIType     string `yaml:"gui_type"`
	GUIArgs     string `yaml:"gui_args"`
}

func parseYAML(data []byte, location string) ([]Row, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", location, err)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("schema: %s contains no parameter rows", location)
	}
	rows := make([]Row, 0, len(doc.Parameters))
	for i, raw := range doc.Parameters {
		key := strings.TrimSpace(raw.Key)
		if key == "" {
			return nil, fmt.Errorf("schema: %s parameter %d has an empty key", location, i)
		}
		rows = append(rows, Row{
			Key:         key,
			Alias:       strings.TrimSpace(raw.Alias),
			Group:       strings.TrimSpace(raw.Group),
			Default:     strings.TrimSpace(raw.Default),
			Unit:        strings.TrimSpace(raw.Unit),
			Description: strings.TrimSpace(raw.Description),
			GUIType:     strings.TrimSpace(raw.GUIType),
			GUIArgs:     strings.TrimSpace(raw.GUIArgs),
		})
	}
	return rows, nil
}
