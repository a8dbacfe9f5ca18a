package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/batch"
	"github.com/gogpu/recipe/raster"
)

// collectInputs expands directories into the image files they contain.
// Files named explicitly are kept whatever their extension.
func collectInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if _, ok := raster.FormatFromFilename(e.Name()); ok {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func readInputs(paths []string, md map[string]any, log *slog.Logger) ([]batch.Input, error) {
	names := uniqueNames(paths, log)
	inputs := make([]batch.Input, 0, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, batch.Input{
			Filename: names[i],
			Data:     data,
			Metadata: md,
		})
	}
	return inputs, nil
}

// uniqueNames returns the base name of every path. Later inputs sharing a
// base name with an earlier one get a numeric suffix ("x_2.jpg") so their
// artifacts do not overwrite each other.
func uniqueNames(paths []string, log *slog.Logger) []string {
	names := make([]string, len(paths))
	seen := make(map[string]int)
	taken := make(map[string]bool)
	for i, p := range paths {
		name := filepath.Base(p)
		seen[name]++
		if seen[name] > 1 || taken[name] {
			ext := filepath.Ext(name)
			stem := strings.TrimSuffix(name, ext)
			n := max(seen[name], 2)
			for taken[fmt.Sprintf("%s_%d%s", stem, n, ext)] {
				n++
			}
			renamed := fmt.Sprintf("%s_%d%s", stem, n, ext)
			log.Warn("duplicate input name", "path", p, "renamed", renamed)
			name = renamed
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// artifactPath returns the slash-separated path of a relative to the
// output root. Paths that would leave the root are rejected.
func artifactPath(a recipe.Artifact) (string, error) {
	name := path.Join(a.Subfolder, a.Filename)
	if a.Filename == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("artifact %q in subfolder %q escapes the output directory", a.Filename, a.Subfolder)
	}
	return name, nil
}

// sink receives the artifacts of a command.
type sink interface {
	Write(a recipe.Artifact) error
	Close() error
	String() string
}

type dirSink struct {
	root string
}

func newDirSink(root string) (*dirSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &dirSink{root: root}, nil
}

func (s *dirSink) Write(a recipe.Artifact) error {
	name, err := artifactPath(a)
	if err != nil {
		return err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, a.Bytes, 0o644)
}

func (s *dirSink) Close() error   { return nil }
func (s *dirSink) String() string { return s.root }

type zipSink struct {
	name string
	f    *os.File
	zw   *zip.Writer
}

func newZipSink(name string) (*zipSink, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &zipSink{name: name, f: f, zw: zip.NewWriter(f)}, nil
}

func (s *zipSink) Write(a recipe.Artifact) error {
	name, err := artifactPath(a)
	if err != nil {
		return err
	}
	// Encoded images do not compress further.
	w, err := s.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(a.Bytes)
	return err
}

func (s *zipSink) Close() error {
	if err := s.zw.Close(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

func (s *zipSink) String() string { return s.name }

// report prints one line per result plus its warnings and returns the
// number of failed results.
func report(w io.Writer, results []batch.Result) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s: FAILED: %v\n", r.Filename, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %d artifacts, %d warnings\n", r.Filename, len(r.Artifacts), len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
	return failed
}
