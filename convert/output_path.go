package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"pageflow/areatree"
	"pageflow/common"
	"pageflow/config"
	"pageflow/state"
)

// outputNamer decides where rendered document is placed.
type outputNamer struct {
	format        common.OutputFmt
	noDirs        bool
	transliterate bool
	template      string
	log           *zap.Logger
}

func newOutputNamer(env *state.LocalEnv, log *zap.Logger) *outputNamer {
	return &outputNamer{
		format:        env.Format,
		noDirs:        env.NoDirs,
		transliterate: env.Cfg.Document.FileNameTransliterate,
		template:      env.Cfg.Document.OutputNameTemplate,
		log:           log,
	}
}

// path returns output file name for document d read from src. src is
// relative to processed source root and its directories are repeated under
// dst unless noDirs is set. Name comes from expanded output name template,
// which may add subdirectories, or from source file name when there is no
// template or it cannot be expanded.
func (n *outputNamer) path(d *areatree.Document, src, dst string) string {
	dir := dst
	if !n.noDirs {
		dir = filepath.Join(dst, filepath.Dir(src))
	}

	segments := n.templateSegments(d, src)
	if len(segments) == 0 {
		segments = []string{strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))}
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dir)
	for _, s := range segments {
		parts = append(parts, n.clean(s))
	}
	parts[len(parts)-1] += n.format.Ext()
	return filepath.Join(parts...)
}

func (n *outputNamer) templateSegments(d *areatree.Document, src string) []string {
	if n.template == "" {
		return nil
	}
	name, err := expandTemplate(d, src, config.OutputNameTemplateFieldName, n.template, n.format)
	if err != nil {
		n.log.Warn("Unable to prepare output file name, using source name", zap.Error(err))
		return nil
	}
	return splitSegments(name)
}

// splitSegments breaks slash separated name into non empty path elements.
func splitSegments(name string) []string {
	return strings.FieldsFunc(filepath.FromSlash(name), func(r rune) bool {
		return r == filepath.Separator
	})
}

func (n *outputNamer) clean(segment string) string {
	if n.transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
