package convert

import (
	"fmt"
	"io"
	"os"

	fixzip "github.com/hidez8891/zip"
)

// publish moves rendered result from working directory to its final place.
// With stripDescriptors set result must be a zip archive, it is rewritten so
// every local header carries sizes and checksum.
func publish(rendered, target string, stripDescriptors bool) (err error) {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", target, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to finish %s: %w", target, cerr)
		}
	}()

	if stripDescriptors {
		return rewriteZip(rendered, out)
	}

	in, err := os.Open(rendered)
	if err != nil {
		return fmt.Errorf("unable to open rendered result: %w", err)
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("unable to copy rendered result: %w", err)
	}
	return nil
}

func rewriteZip(rendered string, out io.Writer) error {
	r, err := fixzip.OpenReader(rendered)
	if err != nil {
		return fmt.Errorf("unable to open rendered container: %w", err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	for _, f := range r.File {
		f.Flags &^= fixzip.FlagDataDescriptor
		if err := w.CopyFile(f); err != nil {
			return fmt.Errorf("unable to copy container entry %s: %w", f.Name, err)
		}
	}
	return w.Close()
}
