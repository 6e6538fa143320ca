package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
)

type entry struct {
	name    string
	content string
	nonUTF8 bool
}

func makeZip(t *testing.T, entries ...entry) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath string, opts Options) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, opts, func(archive, name string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, name)
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		entry{name: "docs/readme.txt", content: "readme content"},
		entry{name: "docs/guide.xml", content: "guide content"},
		entry{name: "src/main.xml", content: "main content"},
		entry{name: "src/test.go", content: "test content"},
		entry{name: "config.yml", content: "config content"},
	)
	isXML := func(name string) bool { return strings.HasSuffix(name, ".xml") }

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{name: "docs_prefix", opts: Options{Prefix: "docs/"}, want: []string{"docs/readme.txt", "docs/guide.xml"}},
		{name: "no_matching_prefix", opts: Options{Prefix: "nonexistent/"}, want: nil},
		{name: "empty_prefix", opts: Options{}, want: []string{"docs/readme.txt", "docs/guide.xml", "src/main.xml", "src/test.go", "config.yml"}},
		{name: "match", opts: Options{Match: isXML}, want: []string{"docs/guide.xml", "src/main.xml"}},
		{name: "prefix_and_match", opts: Options{Prefix: "src/", Match: isXML}, want: []string{"src/main.xml"}},
		{name: "case_sensitive", opts: Options{Prefix: "Docs/"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, collect(t, zipPath, tt.opts)); diff != "" {
				t.Errorf("visited mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("walkFn_returns_error", func(t *testing.T) {
		expectedErr := errors.New("test error")
		visited := 0
		err := Walk(zipPath, Options{}, func(archive, name string, file *zip.File) error {
			visited++
			if visited == 2 {
				return expectedErr
			}
			return nil
		})
		if err != expectedErr {
			t.Errorf("Walk() error = %v, want %v", err, expectedErr)
		}
		if visited != 2 {
			t.Errorf("visited %d files, want 2 (early termination)", visited)
		}
	})
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent_file", func(t *testing.T) {
		if err := Walk("/nonexistent/file.zip", Options{}, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid_zip_file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		if err := Walk(invalidZip, Options{}, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("unsafe_path", func(t *testing.T) {
		zipPath := makeZip(t, entry{name: "ok.xml"}, entry{name: "../escape.xml"})
		if err := Walk(zipPath, Options{}, func(string, string, *zip.File) error { return nil }); err == nil {
			t.Error("Expected error for path traversal entry")
		}
	})
}

func TestWalk_WithDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}

	w := zip.NewWriter(zipFile)
	dirHeader := &zip.FileHeader{Name: "mydir/"}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	fw, err := w.Create("mydir/file.txt")
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	fw.Write([]byte("content"))
	w.Close()
	zipFile.Close()

	if diff := cmp.Diff([]string{"mydir/file.txt"}, collect(t, zipPath, Options{Prefix: "mydir/"})); diff != "" {
		t.Errorf("directories must be skipped (-want +got):\n%s", diff)
	}
}

func TestWalk_CodePage(t *testing.T) {
	name, err := charmap.Windows1251.NewEncoder().String("книги/том.xml")
	if err != nil {
		t.Fatalf("Failed to encode name: %v", err)
	}
	zipPath := makeZip(t, entry{name: name, content: "x", nonUTF8: true})

	t.Run("raw", func(t *testing.T) {
		if diff := cmp.Diff([]string{name}, collect(t, zipPath, Options{})); diff != "" {
			t.Errorf("name should not be converted (-want +got):\n%s", diff)
		}
	})

	t.Run("decoded", func(t *testing.T) {
		got := collect(t, zipPath, Options{Prefix: "книги/", CodePage: charmap.Windows1251})
		if diff := cmp.Diff([]string{"книги/том.xml"}, got); diff != "" {
			t.Errorf("name mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestWalk_FileContent(t *testing.T) {
	content := []byte("test content")
	zipPath := makeZip(t, entry{name: "test.txt", content: string(content)})

	err := Walk(zipPath, Options{}, func(archive, name string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if !bytes.Equal(buf.Bytes(), content) {
			t.Errorf("content = %s, want %s", buf.Bytes(), content)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"docs/readme.txt", true},
		{"a/b/../c", false},
		{"..", false},
		{"/etc/passwd", false},
		{`\windows\system`, false},
		{"..file", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSafePath(tt.name); got != tt.want {
				t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
