package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FixturesDir is where fixtures are read and written, relative to the
// working directory (the package directory under go test).
var FixturesDir = filepath.Join("testdata", "fixtures")

// Fixture is a recorded task input and model output, replayed by tests
// that must not reach a provider.
type Fixture struct {
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`
	Model     string          `json:"model"`
	Timestamp time.Time       `json:"timestamp"`
}

func (f *Fixture) UnmarshalInput(v any) error {
	return json.Unmarshal(f.Input, v)
}

func (f *Fixture) UnmarshalOutput(v any) error {
	return json.Unmarshal(f.Output, v)
}

func (f *Fixture) check() error {
	var missing []error
	if f.Name == "" {
		missing = append(missing, errors.New("missing 'name' field"))
	}
	if f.Model == "" {
		missing = append(missing, errors.New("missing 'model' field"))
	}
	if len(f.Input) == 0 {
		missing = append(missing, errors.New("missing 'input' field"))
	}
	if len(f.Output) == 0 {
		missing = append(missing, errors.New("missing 'output' field"))
	}
	return errors.Join(missing...)
}

func fixturePath(name string) string {
	return filepath.Join(FixturesDir, name+".json")
}

// LoadFixture reads FixturesDir/<name>.json.
func LoadFixture(name string) (*Fixture, error) {
	data, err := os.ReadFile(fixturePath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("fixture not found: %s (record it with RUN_E2E_TESTS=true RECORD_FIXTURES=true go test ./internal/llm/tasks)", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", name, err)
	}
	if err := fixture.check(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", name, err)
	}
	return &fixture, nil
}

// SaveFixture writes FixturesDir/<name>.json through a temp file.
func SaveFixture(name string, fixture *Fixture) error {
	if err := fixture.check(); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	if err := os.MkdirAll(FixturesDir, 0o755); err != nil {
		return fmt.Errorf("create fixtures directory: %w", err)
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture %s: %w", name, err)
	}

	path := fixturePath(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename fixture %s: %w", name, err)
	}
	return nil
}
