package mapping

import (
	"encoding/json"
	"os"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

const validationMessage = "The mapping must be a dictionary of entry IDs (strings) mapped to a set of entry IDs"

// ToJSON renders the mapping as indented JSON with each value set as a
// sorted array, so the output is deterministic.
func ToJSON(m Mapping) ([]byte, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	sorted := make(map[string][]string, len(m))
	for key, values := range m {
		sorted[key] = values.Sorted()
	}
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encoding mapping")
	}
	return data, nil
}

// SaveJSON writes the mapping to a JSON file.
func SaveJSON(m Mapping, path string) error {
	data, err := ToJSON(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "saving mapping to %s", path)
	}
	return nil
}

// LoadJSON reads a mapping from a JSON file written by SaveJSON, validating
// its shape.
func LoadJSON(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "no mapping file at %s", path)
		}
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "reading mapping from %s", path)
	}
	return FromJSON(data)
}

// FromJSON parses a mapping from its JSON form.
func FromJSON(data []byte) (Mapping, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidMapping, err, validationMessage)
	}
	m := make(Mapping, len(raw))
	for key, values := range raw {
		if key == "" || len(values) == 0 {
			return nil, kerrors.New(kerrors.ErrCodeInvalidMapping, validationMessage)
		}
		for _, value := range values {
			if value == "" {
				return nil, kerrors.New(kerrors.ErrCodeInvalidMapping, validationMessage)
			}
		}
		m[key] = NewSet(values...)
	}
	return m, nil
}

func validate(m Mapping) error {
	for key, values := range m {
		if key == "" || len(values) == 0 {
			return kerrors.New(kerrors.ErrCodeInvalidMapping, validationMessage)
		}
		for value := range values {
			if value == "" {
				return kerrors.New(kerrors.ErrCodeInvalidMapping, validationMessage)
			}
		}
	}
	return nil
}
