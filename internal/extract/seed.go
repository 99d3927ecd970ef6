package extract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// seedFile is the mapping form of a vocabulary seed file.
type seedFile struct {
	Attributes []string `yaml:"attributes" json:"attributes"`
}

// LoadSeed reads canonical attribute names from a YAML or JSON file. The file
// is either a plain list of names or a mapping with an "attributes" list.
// Returns nil and nil error if path is empty.
func LoadSeed(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed vocabulary: %w", err)
	}
	names, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parsing seed vocabulary %s: %w", path, err)
	}
	return names, nil
}

// ParseSeed decodes seed file content. JSON is accepted because it is valid
// YAML. Blank entries are dropped and surrounding whitespace is trimmed.
func ParseSeed(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var raw []string
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&raw); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var sf seedFile
		if err := node.Content[0].Decode(&sf); err != nil {
			return nil, err
		}
		raw = sf.Attributes
	default:
		return nil, fmt.Errorf("expected a list of attributes or an \"attributes\" key")
	}

	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}
