package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Roelanb/imagewatcher/internal/jobs"
	"github.com/Roelanb/imagewatcher/internal/pipeline"
)

func parseFilter(name string) (jobs.Filter, error) {
	return jobs.ParseFilter(strings.TrimSpace(name))
}

// DefaultOutput derives <parent>/<stem>.min.<ext> from a source path.
func DefaultOutput(path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" || ext == "." {
		return "", fmt.Errorf("cannot derive output for %s: invalid extension", path)
	}
	if stem == "" {
		return "", fmt.Errorf("cannot derive output for %s: invalid file stem", path)
	}
	return filepath.Join(filepath.Dir(path), stem+".min"+ext), nil
}

// Settings converts the keys of one block into jobs.Settings.
func (j Jobs) Settings() (jobs.Settings, error) {
	s := jobs.Settings{
		Jobs: jobs.Jobs{
			Blur:      j.Blur,
			Sharpen:   j.Sharpen,
			Contrast:  j.Contrast,
			Brighten:  j.Brighten,
			HueRotate: j.HueRotate,
			FlipV:     j.FlipV,
			FlipH:     j.FlipH,
			Rotate90:  j.Rotate90,
			Rotate180: j.Rotate180,
			Rotate270: j.Rotate270,
			Grayscale: j.Grayscale,
			Invert:    j.Invert,
		},
	}
	switch {
	case j.Width != nil && j.Height != nil:
		s.Resize = &jobs.Resize{Size: jobs.WidthHeight(*j.Width, *j.Height)}
	case j.Width != nil:
		s.Resize = &jobs.Resize{Size: jobs.Width(*j.Width)}
	case j.Height != nil:
		s.Resize = &jobs.Resize{Size: jobs.Height(*j.Height)}
	}
	if j.ResizeFilter != nil {
		f, err := parseFilter(*j.ResizeFilter)
		if err != nil {
			return jobs.Settings{}, err
		}
		s.ResizeFilter = &f
	}
	return s, nil
}

// WatchList builds the watched files in configuration order, each merged
// with the shared defaults.
func WatchList(cfg *Config) ([]*pipeline.WatchedFile, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	shared, err := cfg.Jobs.Settings()
	if err != nil {
		return nil, err
	}
	out := make([]*pipeline.WatchedFile, 0, len(cfg.Files))
	for i, f := range cfg.Files {
		own, err := f.Jobs.Settings()
		if err != nil {
			return nil, fmt.Errorf("files[%d]: %w", i, err)
		}
		output := f.Output
		if output == "" {
			if output, err = DefaultOutput(f.Path); err != nil {
				return nil, fmt.Errorf("files[%d]: %w", i, err)
			}
		}
		out = append(out, pipeline.NewWatchedFile(f.Path, output, jobs.Merge(own, shared)))
	}
	return out, nil
}
