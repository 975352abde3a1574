package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Codec loads and saves encoded images.
type Codec interface {
	Load(path string) (image.Image, error)
	Save(img image.Image, path string) error
}

// FileCodec reads and writes images on the local filesystem. The output
// format is chosen from the destination extension.
type FileCodec struct {
	JPEGQuality int
}

// NewFileCodec returns a FileCodec; quality outside 1..100 uses 95.
func NewFileCodec(jpegQuality int) *FileCodec {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &FileCodec{JPEGQuality: jpegQuality}
}

// Load decodes the image at path.
func (c *FileCodec) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img into a temp file next to path and renames it into place,
// so a reader never observes a partially written output.
func (c *FileCodec) Save(img image.Image, path string) (err error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("output %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = imaging.Encode(tmp, img, format, imaging.JPEGQuality(c.JPEGQuality)); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}
