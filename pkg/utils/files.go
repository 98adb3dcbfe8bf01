package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned for an archive without any files.
var ErrEmptyArchive = errors.New("utils: archive contains no files")

// romExtensions are preferred when picking a file out of an archive.
var romExtensions = []string{".gb", ".gbc", ".bin"}

// LoadFile loads the given file and performs decompression if necessary.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decompress(filename, data)
}

// Decompress inflates data according to the extension of filename.
// Archives yield their first ROM-like file, or their first file when
// none looks like a ROM. Unknown extensions are returned as is.
func Decompress(filename string, data []byte) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case ".xz":
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		return io.ReadAll(r)
	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		names := make([]string, len(r.File))
		for i, f := range r.File {
			names[i] = f.Name
		}
		i := pick(names)
		if i < 0 {
			return nil, ErrEmptyArchive
		}
		return readArchived(r.File[i].Open)
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		names := make([]string, len(r.File))
		for i, f := range r.File {
			names[i] = f.Name
		}
		i := pick(names)
		if i < 0 {
			return nil, ErrEmptyArchive
		}
		return readArchived(r.File[i].Open)
	default:
		return data, nil
	}
}

// pick returns the index of the file to extract, or -1.
func pick(names []string) int {
	first := -1
	for i, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		if first < 0 {
			first = i
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, romExt := range romExtensions {
			if ext == romExt {
				return i
			}
		}
	}
	return first
}

func readArchived(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
