package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"pageflow/archive"
	"pageflow/area"
	"pageflow/areatree"
	"pageflow/common"
	"pageflow/config"
	"pageflow/misc"
	"pageflow/pagecache"
	"pageflow/render"
	"pageflow/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format, err = common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to xml", zap.Error(err))
		env.Format = common.OutputFmtXml
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", append(env.Stats.Fields(), zap.Duration("elapsed", time.Since(start)))...)
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core processing logic independently of CLI framework.
// It determines the input type (directory, archive, or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		source, enc, err := isSourceFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if source && len(tail) == 0 {
			// area tree cannot have tail, encoding is handled by processDocument
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open source: %w", err)
			}
			defer file.Close()
			if err := processDocument(ctx, selectReader(file, enc), filepath.Base(head), dst, log); err != nil {
				env.Stats.Fail()
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as area tree (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding area tree files and archives and
// processes them.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		source, enc, err := isSourceFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !source {
			log.Debug("Skipping file, not recognized as area tree or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			env.Stats.Fail()
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processDocument(ctx, selectReader(file, enc), rel, dst, log); err != nil {
			env.Stats.Fail()
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds area tree files under
// "pathIn" and processes them. Resulting files are placed under "pathOut".
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	opts := archive.Options{Prefix: pathIn, CodePage: env.CodePage}
	err = archive.Walk(path, opts, func(arc, name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		source, enc, err := isSourceInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("path", name), zap.Error(err))
			return nil
		}
		if !source {
			log.Debug("Skipping file, not recognized as area tree", zap.String("archive", arc), zap.String("file", name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			env.Stats.Fail()
			log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", name), zap.Error(err))
			return nil
		}
		defer r.Close()

		if err := processDocument(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(name)), dst, log); err != nil {
			env.Stats.Fail()
			log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processDocument renders single area tree. "src" is part of the source path
// (always including file name) relative to the original path. When actual file
// was specified it will be just base file name without a path. When looking
// inside archive or directory it will be relative path inside archive or
// directory (including base file name). "dst" is the destination directory
// where the result should be written.
func processDocument(ctx context.Context, r io.Reader, src string, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var refID, outputName string

	log.Info("Rendering starting", zap.String("from", src))
	defer func(start time.Time) {
		// single broken document should not stop the whole run
		if r := recover(); r != nil {
			log.Error("Rendering ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rendering panic: %v", r)
		} else if rerr == nil {
			log.Info("Rendering completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	doc, err := areatree.Read(r, log)
	if err != nil {
		return fmt.Errorf("unable to parse area tree (%s): %w", src, err)
	}
	refID = doc.ID

	outputName = newOutputNamer(env, log).path(doc, src, dst)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return fmt.Errorf("unable to create temporary directory: %w", err)
	}
	section := env.Rpt.Document(refID)
	if section != nil {
		section.Store("work", tmpDir)
	} else {
		defer os.RemoveAll(tmpDir)
	}

	res, h, err := renderDocument(ctx, doc, filepath.Join(tmpDir, filepath.Base(outputName)), env, log)
	if err != nil {
		return err
	}

	fixZip := env.Format == common.OutputFmtIon && env.Cfg.Rendering.FixZip
	if err := publish(filepath.Join(tmpDir, filepath.Base(outputName)), outputName, fixZip); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	for _, f := range res.Failures {
		log.Warn("Page was not rendered", zap.Error(f))
	}
	if len(res.Dangling) > 0 {
		log.Warn("Document has references to undefined IDs", zap.Strings("ids", res.Dangling))
	}

	env.Stats.Record(res.Rendered, len(res.Dangling))

	section.StoreData("registry.txt", []byte(h.Registry().String()))
	section.Store("result"+env.Format.Ext(), outputName)
	return nil
}

// renderDocument feeds area tree to the handler and writes rendered output
// into file "to".
func renderDocument(ctx context.Context, doc *areatree.Document, to string, env *state.LocalEnv, log *zap.Logger) (*area.Result, *area.Handler, error) {
	out, err := os.Create(to)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create output file: %w", err)
	}
	defer out.Close()

	rnd, err := render.New(env.Format, out, render.Options{
		Indent:         env.Cfg.Rendering.Indent,
		UnresolvedText: env.Cfg.Rendering.UnresolvedText,
		Compress:       env.Cfg.Rendering.Compress,
		ID:             doc.ID,
		Title:          doc.Title,
		Language:       doc.Language,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	var opts []area.ModelOption
	store, err := openPageStore(&env.Cfg.Document.PageCache, log)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, area.WithPageStore(store))
	}

	h := area.NewHandler(rnd, log, opts...)
	if err := doc.Feed(ctx, &filteredHandler{Handler: h, cfg: &env.Cfg.Document}); err != nil {
		return nil, nil, fmt.Errorf("unable to process area tree: %w", err)
	}
	res, err := h.EndDocument()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to finish rendering: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, nil, fmt.Errorf("unable to close output file: %w", err)
	}
	return res, h, nil
}

// openPageStore returns nil when pages waiting for references should stay in
// memory as is.
func openPageStore(cfg *config.PageCacheConfig, log *zap.Logger) (*pagecache.Store, error) {
	switch cfg.Mode {
	case common.PageCacheModeMemory:
		return pagecache.Open("", log)
	case common.PageCacheModeFile:
		dir, err := pagecache.Dir(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return pagecache.Open(dir, log)
	}
	return nil, nil
}

// filteredHandler drops off-document items disabled by configuration.
type filteredHandler struct {
	*area.Handler
	cfg *config.DocumentConfig
}

func (f *filteredHandler) SetOutline(o *area.Outline) {
	if f.cfg.Outline {
		f.Handler.SetOutline(o)
	}
}

func (f *filteredHandler) AddDestination(id string) {
	if f.cfg.Destinations {
		f.Handler.AddDestination(id)
	}
}

func (f *filteredHandler) AddOffDocumentItem(item area.OffDocumentItem) {
	if f.cfg.Extensions {
		f.Handler.AddOffDocumentItem(item)
	}
}
