package mapping

import (
	"path/filepath"
	"reflect"
	"testing"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

func TestToJSON_SortedAndIndented(t *testing.T) {
	m := Mapping{"x": NewSet("b", "a")}
	data, err := ToJSON(m)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	want := "{\n  \"x\": [\n    \"a\",\n    \"b\"\n  ]\n}"
	if string(data) != want {
		t.Errorf("ToJSON = %q, want %q", data, want)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	m := Mapping{
		"cpd:C00001": NewSet("path:map00010", "path:map00020"),
		"cpd:C00002": NewSet("path:map00010"),
	}
	path := filepath.Join(t.TempDir(), "mapping.json")

	if err := SaveJSON(m, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch: %v != %v", got, m)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	for name, data := range map[string]string{
		"not an object":  `[1, 2]`,
		"empty values":   `{"x": []}`,
		"empty value":    `{"x": [""]}`,
		"empty key":      `{"": ["a"]}`,
		"non-string ids": `{"x": [1]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromJSON([]byte(data))
			if !kerrors.Is(err, kerrors.ErrCodeInvalidMapping) {
				t.Errorf("expected INVALID_MAPPING, got %v", err)
			}
		})
	}
}

func TestLoadJSON_Missing(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	if !kerrors.Is(err, kerrors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestToJSON_RejectsInvalidMapping(t *testing.T) {
	if _, err := ToJSON(Mapping{"x": NewSet()}); !kerrors.Is(err, kerrors.ErrCodeInvalidMapping) {
		t.Errorf("expected INVALID_MAPPING, got %v", err)
	}
	got := kerrors.UserMessage(kerrors.New(kerrors.ErrCodeInvalidMapping, validationMessage))
	if got != "The mapping must be a dictionary of entry IDs (strings) mapped to a set of entry IDs" {
		t.Errorf("unexpected validation message: %s", got)
	}
}
