package release

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Values represents helm chart values as a map.
type Values map[string]any

// LoadValues reads and merges the YAML overlay files in order, later files
// taking precedence key-wise.
func LoadValues(paths []string) (Values, error) {
	merged := make(Values)
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 - overlay paths come from the release descriptors
		if err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
		}

		var v Values
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
		}
		merged = Merge(merged, v)
	}
	return merged, nil
}

// Merge combines values maps with later maps taking precedence.
func Merge(valueMaps ...Values) Values {
	result := make(Values)
	for _, m := range valueMaps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
