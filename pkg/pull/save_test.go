package pull

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entries")
	s, err := NewDirSaver(dir)
	if err != nil {
		t.Fatalf("NewDirSaver failed: %v", err)
	}

	if err := s.Save("cpd:C00001", "", []byte("ENTRY  C00001")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save("cpd:C00002", "mol", []byte("molecule")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cpd:C00001.txt"))
	if err != nil || string(data) != "ENTRY  C00001" {
		t.Errorf("flat file entry: %q, %v", data, err)
	}
	data, err = os.ReadFile(filepath.Join(dir, "cpd:C00002.mol"))
	if err != nil || string(data) != "molecule" {
		t.Errorf("mol entry: %q, %v", data, err)
	}
}

func TestZipSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.zip")
	s := NewZipSaver(path)

	if err := s.Save("hsa:1", "aaseq", []byte("MSTA")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save("hsa:2", "aaseq", []byte("MKLV")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()

	got := map[string]string{}
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}
	want := map[string]string{"hsa:1.aaseq": "MSTA", "hsa:2.aaseq": "MKLV"}
	if len(got) != len(want) || got["hsa:1.aaseq"] != want["hsa:1.aaseq"] || got["hsa:2.aaseq"] != want["hsa:2.aaseq"] {
		t.Errorf("archive contents %v, want %v", got, want)
	}
}

func TestZipSaver_PreservesExistingArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.zip")

	first := NewZipSaver(path)
	if err := first.Save("cpd:C00001", "", []byte("water")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := first.Save("cpd:C00002", "", []byte("atp")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := NewZipSaver(path)
	if err := second.Save("cpd:C00003", "", []byte("nad")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := second.Save("cpd:C00002", "", []byte("atp v2")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()

	got := map[string]string{}
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}
	want := map[string]string{
		"cpd:C00001.txt": "water",
		"cpd:C00002.txt": "atp v2",
		"cpd:C00003.txt": "nad",
	}
	if len(got) != len(want) {
		t.Fatalf("archive contents %v, want %v", got, want)
	}
	for name, entry := range want {
		if got[name] != entry {
			t.Errorf("member %s = %q, want %q", name, got[name], entry)
		}
	}
}

func TestZipSaver_NoEntriesNoArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	s := NewZipSaver(path)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("an archive should not be created without entries")
	}
}

func TestMemorySaver(t *testing.T) {
	s := NewMemorySaver()
	if err := s.Save("id", "json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	entries := s.Entries()
	if string(entries["id"]) != `{"a":1}` {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestNewSaver(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSaver(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("NewSaver(dir) failed: %v", err)
	}
	if _, ok := s.(*DirSaver); !ok {
		t.Errorf("expected a DirSaver, got %T", s)
	}

	s, err = NewSaver(filepath.Join(dir, "out.zip"))
	if err != nil {
		t.Fatalf("NewSaver(zip) failed: %v", err)
	}
	if _, ok := s.(*ZipSaver); !ok {
		t.Errorf("expected a ZipSaver, got %T", s)
	}
}
