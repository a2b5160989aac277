package scenario

import(
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/astro-snr/pkg/reject"
)

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.UnmarshalStrict(b, &c)
	return c, err
}

func newConfigFromToml(b []byte) (Config, error) {
	c := NewConfig()
	err := toml.Unmarshal(b, &c)
	return c, err
}

// Load reads a scenario file, picking the format from the extension.
// Anything the file doesn't mention keeps its default.
func Load(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %w", filename, err)
	}

	var c Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		c, err = newConfigFromYaml(contents)
	case ".toml":
		c, err = newConfigFromToml(contents)
	default:
		return Config{}, reject.New(reject.Config, "config %s: unknown extension %q, want .yaml or .toml", filename, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config parse %s: %w", filename, err)
	}

	return c, nil
}
