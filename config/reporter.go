package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/maruel/natural"

	"pageflow/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to a temporary file.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either in-memory data or a path to file or directory on disk.
type entry struct {
	path  string
	stamp time.Time
	data  []byte
}

func (e entry) isData() bool {
	return e.data != nil
}

// Report collects debug information (configuration, logs, per document
// registry dumps, working directories and results) and packs it into a single
// zip archive on Close. Not safe for concurrent use.
type Report struct {
	entries map[string]entry
	docs    int
	file    *os.File
}

// Close writes archive. Stored directories are working directories and page
// caches, they are removed after archive is written.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	if err := r.finalize(); err != nil {
		return err
	}

	var err error
	for _, e := range r.entries {
		if e.isData() {
			continue
		}
		if info, er := os.Stat(e.path); er != nil || !info.IsDir() {
			continue
		}
		if er := os.RemoveAll(e.path); er != nil && err == nil {
			err = fmt.Errorf("unable to remove stored directory: %w", er)
		}
	}
	return err
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

func (r *Report) put(name string, e entry) {
	if old, exists := r.entries[name]; exists && (old.isData() || e.isData() || old.path != e.path) {
		panic(fmt.Sprintf("report entry [%s] stored twice", name))
	}
	r.entries[name] = e
}

// Store records file or directory to be archived under name. Content is read
// when report is closed.
func (r *Report) Store(name, location string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(location); err == nil {
		location = p
	}
	r.put(name, entry{path: location})
}

// StoreData records data to be archived as file name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if data == nil {
		data = []byte{}
	}
	r.put(name, entry{data: data, stamp: time.Now()})
}

// Document opens report section for the next processed document. Section of
// a nil report is nil and ignores everything.
func (r *Report) Document(refID string) *Section {
	if r == nil {
		return nil
	}
	r.docs++
	return &Section{rpt: r, prefix: fmt.Sprintf("documents/%d-%s", r.docs, refID)}
}

// Section groups report entries of a single document.
type Section struct {
	rpt    *Report
	prefix string
}

func (s *Section) Store(name, location string) {
	if s == nil {
		return
	}
	s.rpt.Store(path.Join(s.prefix, name), location)
}

func (s *Section) StoreData(name string, data []byte) {
	if s == nil {
		return
	}
	s.rpt.StoreData(path.Join(s.prefix, name), data)
}

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names, manifest := prepareManifest(r.entries)
	if err := saveFile(arc, "MANIFEST", time.Now(), bytes.NewReader(manifest)); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.isData() {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(e.path)
		if err != nil {
			// disappeared, manifest still lists it
			continue
		}
		switch {
		case info.Mode().IsRegular():
			err = saveLocalFile(arc, name, e.path, info.ModTime())
		case info.IsDir():
			err = saveDir(arc, name, e.path)
		}
		if err != nil {
			return err
		}
	}
	return arc.Close()
}

// prepareManifest returns entry names in natural order and manifest listing
// them.
func prepareManifest(entries map[string]entry) ([]string, []byte) {
	names := make([]string, 0, len(entries))
	for k := range entries {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	now := time.Now()
	buf := new(bytes.Buffer)
	for _, k := range names {
		e := entries[k]
		stamp, source := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if e.isData() {
			source = fmt.Sprintf("<%d bytes>", len(e.data))
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.RFC3339), k, source)
	}
	return names, buf.Bytes()
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func saveLocalFile(dst *zip.Writer, name, location string, t time.Time) error {
	f, err := os.Open(location)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return saveLocalFile(dst, path.Join(name, filepath.ToSlash(rel)), p, info.ModTime())
	})
}
