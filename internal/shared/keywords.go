package shared

import (
	"fmt"
	"os"

	"github.com/desertthunder/moodset/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadKeywordsFile reads a YAML mapping of label → phrase list. Labels keep the order they appear in the file.
//
//	happy:
//	  - feel good songs
//	  - good vibes
//	sad:
//	  - heartbreak
func LoadKeywordsFile(path string) (*models.KeywordCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}
	return ParseKeywords(data)
}

// ParseKeywords decodes YAML keyword data. See [LoadKeywordsFile].
func ParseKeywords(data []byte) (*models.KeywordCatalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse keywords: %v", ErrInvalidConfig, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: keywords file is empty", ErrInvalidConfig)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: keywords must be a mapping of label to phrases (line %d)", ErrInvalidConfig, root.Line)
	}

	catalog := models.NewKeywordCatalog()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		var phrases []string
		if err := value.Decode(&phrases); err != nil {
			return nil, fmt.Errorf("%w: label %q (line %d): %v", ErrInvalidConfig, key.Value, key.Line, err)
		}
		catalog.Add(key.Value, phrases...)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return catalog, nil
}
