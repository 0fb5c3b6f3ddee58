package pull

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

// Saver persists pulled entries. The file name for an entry is
// "{entryID}.{entryField}", or "{entryID}.txt" for the default flat-file
// format. Implementations must be safe for concurrent use.
type Saver interface {
	Save(entryID, entryField string, entry []byte) error
	Close() error
}

// NewSaver picks a saver for the output target: a path ending in ".zip"
// saves entries into a ZIP archive, anything else into a directory (created
// if missing).
func NewSaver(output string) (Saver, error) {
	if strings.HasSuffix(output, ".zip") {
		return NewZipSaver(output), nil
	}
	return NewDirSaver(output)
}

func entryFileName(entryID, entryField string) string {
	ext := entryField
	if ext == "" {
		ext = "txt"
	}
	return entryID + "." + ext
}

// DirSaver writes each entry to its own file in a directory.
type DirSaver struct {
	dir string
}

// NewDirSaver creates the directory if it does not exist.
func NewDirSaver(dir string) (*DirSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "creating output directory %s", dir)
	}
	return &DirSaver{dir: dir}, nil
}

func (s *DirSaver) Save(entryID, entryField string, entry []byte) error {
	path := filepath.Join(s.dir, entryFileName(entryID, entryField))
	if err := os.WriteFile(path, entry, 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "saving entry %s", entryID)
	}
	return nil
}

func (s *DirSaver) Close() error { return nil }

// ZipSaver appends entries to a ZIP archive. A mutex serializes writers so
// concurrent pull workers can share one archive.
type ZipSaver struct {
	path string

	mu      sync.Mutex
	entries map[string][]byte
}

// NewZipSaver buffers entries and writes the archive on Close, so the
// archive is only created once at least one entry was pulled.
func NewZipSaver(path string) *ZipSaver {
	return &ZipSaver{path: path, entries: make(map[string][]byte)}
}

func (s *ZipSaver) Save(entryID, entryField string, entry []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryFileName(entryID, entryField)] = entry
	return nil
}

// Close writes the buffered entries, sorted by file name for a stable
// archive layout, and finalizes the ZIP file. Members of a pre-existing
// archive at the same path are preserved; buffered entries with the same
// name replace them.
func (s *ZipSaver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}

	members := make(map[string][]byte, len(s.entries))
	if reader, err := zip.OpenReader(s.path); err == nil {
		for _, f := range reader.File {
			rc, err := f.Open()
			if err != nil {
				reader.Close()
				return kerrors.Wrap(kerrors.ErrCodeInternal, err, "reading %s from archive %s", f.Name, s.path)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				reader.Close()
				return kerrors.Wrap(kerrors.ErrCodeInternal, err, "reading %s from archive %s", f.Name, s.path)
			}
			members[f.Name] = data
		}
		reader.Close()
	}
	for name, entry := range s.entries {
		members[name] = entry
	}

	file, err := os.Create(s.path)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "creating archive %s", s.path)
	}
	writer := zip.NewWriter(file)

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := writer.Create(name)
		if err == nil {
			_, err = w.Write(members[name])
		}
		if err != nil {
			writer.Close()
			file.Close()
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "writing %s to archive %s", name, s.path)
		}
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "finalizing archive %s", s.path)
	}
	if err := file.Close(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "closing archive %s", s.path)
	}
	return nil
}

// MemorySaver collects entries in memory, keyed by entry ID. It backs the
// in-process pull variants that return entries instead of writing files.
type MemorySaver struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{entries: make(map[string][]byte)}
}

func (s *MemorySaver) Save(entryID, _ string, entry []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryID] = entry
	return nil
}

func (s *MemorySaver) Close() error { return nil }

// Entries returns the collected entries keyed by entry ID.
func (s *MemorySaver) Entries() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out
}
