package cli

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
)

// parseCommaList splits a comma-separated argument, warning about and
// dropping blank items. An argument with nothing but blanks is an error.
func parseCommaList(logger *log.Logger, list string) ([]string, error) {
	items := strings.Split(list, ",")
	var cleaned []string
	blanks := false
	for _, item := range items {
		if item == "" {
			blanks = true
			continue
		}
		cleaned = append(cleaned, item)
	}
	if blanks {
		logger.Warnf("Blank items detected in the comma separated list: \"%s\". Removing blanks...", list)
	}
	if len(cleaned) == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, `ERROR - BAD INPUT: Empty list provided: "%s"`, list)
	}
	return cleaned, nil
}

// readInput resolves a list argument: "-" reads one item per line from r
// (standard input), anything else is parsed as a comma-separated list.
func readInput(logger *log.Logger, r io.Reader, source string) ([]string, error) {
	if source != "-" {
		return parseCommaList(logger, source)
	}

	var items []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			items = append(items, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "reading from standard input")
	}
	if len(items) == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, `ERROR - BAD INPUT: Empty list provided: "%s"`, source)
	}
	return items, nil
}

// writeOutput delivers content to the output target: the console when
// target is empty, a member of a ZIP archive for targets of the form
// "archive.zip:member", and a plain file otherwise.
func writeOutput(target string, content []byte) error {
	if target == "" {
		fmt.Println(string(content))
		return nil
	}
	if archive, member, ok := splitZipTarget(target); ok {
		return appendToZip(archive, member, content)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "creating output directory %s", dir)
		}
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "writing output to %s", target)
	}
	return nil
}

// splitZipTarget splits "path/archive.zip:member" into its archive path and
// member name.
func splitZipTarget(target string) (archive, member string, ok bool) {
	idx := strings.Index(target, ".zip:")
	if idx < 0 {
		return "", "", false
	}
	return target[:idx+len(".zip")], strings.TrimPrefix(target[idx+len(".zip:"):], "/"), true
}

// appendToZip adds a member to a ZIP archive, preserving existing members
// by rewriting the archive.
func appendToZip(archivePath, member string, content []byte) error {
	existing := map[string][]byte{}
	if reader, err := zip.OpenReader(archivePath); err == nil {
		for _, f := range reader.File {
			rc, err := f.Open()
			if err != nil {
				reader.Close()
				return kerrors.Wrap(kerrors.ErrCodeInternal, err, "reading %s from archive %s", f.Name, archivePath)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				reader.Close()
				return kerrors.Wrap(kerrors.ErrCodeInternal, err, "reading %s from archive %s", f.Name, archivePath)
			}
			existing[f.Name] = data
		}
		reader.Close()
	}
	existing[member] = content

	file, err := os.Create(archivePath)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "creating archive %s", archivePath)
	}
	writer := zip.NewWriter(file)
	for name, data := range existing {
		w, err := writer.Create(name)
		if err == nil {
			_, err = w.Write(data)
		}
		if err != nil {
			writer.Close()
			file.Close()
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "writing %s to archive %s", name, archivePath)
		}
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "finalizing archive %s", archivePath)
	}
	return file.Close()
}
