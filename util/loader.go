// Package util - Model and frame file discovery helpers.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FindModel resolves a model file name inside the configured model directory.
//
// Arguments:
//   - dir: Directory holding the model weight files.
//   - file: The model's file name.
//
// Returns:
//   - string: The resolved path.
//   - error: An error if the file does not exist or is not a regular file.
func FindModel(dir, file string) (string, error) {
	path := filepath.Join(dir, file)
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "model file %s not found", path)
	}
	if info.IsDir() {
		return "", errors.Errorf("model path %s is a directory", path)
	}
	return path, nil
}

// ImageFile represents one still frame on disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryImageFiles reads a directory of frame-numbered still images
// ("frame-<n>.<ext>") sorted by frame number, for feeding the pipeline from
// disk instead of a capture device.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: Slice of ImageFile, each containing the raw bytes of an
//     image file.
//   - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var frames []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
			path := filepath.Join(dir, file.Name())
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil, readErr
			}
			frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
			if err != nil {
				return nil, err
			}
			frames = append(frames, ImageFile{
				Path:  path,
				Data:  data,
				Frame: frame,
			})
		}
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})

	return frames, nil
}
