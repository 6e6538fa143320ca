// Package common keeps enums shared by configuration, command line and
// processing packages.
package common

//go:generate go tool go-enum --names --values --marshal

// Specification of requested output type.
// ENUM(xml, ion)
type OutputFmt int

// Ext returns file name extension for the output format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtXml:
		return ".pages.xml"
	case OutputFmtIon:
		return ".ion.zip"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Where content of pages waiting for references is kept.
// ENUM(none, memory, file)
type PageCacheMode int
