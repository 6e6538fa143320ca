package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"pageflow/areatree"
	"pageflow/common"
	"pageflow/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context      string
	Title        string
	ID           string
	Language     string
	Sequences    int
	Pages        int
	Bookmarks    int
	Destinations int
	Format       string
	SourceFile   string
}

func expandTemplate(d *areatree.Document, src string, name config.TemplateFieldName, field string, format common.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:      string(name),
		Title:        d.Title,
		ID:           d.ID,
		Language:     d.Language.String(),
		Sequences:    d.Sequences,
		Pages:        d.Pages,
		Bookmarks:    d.Bookmarks,
		Destinations: d.Destinations,
		Format:       format.String(),
		SourceFile:   strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
