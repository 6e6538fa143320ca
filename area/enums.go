package area

//go:generate go tool go-enum --names --values

// Kind of the content area.
// ENUM(block, text, link, citation, citation-last, retrieve-marker)
type AreaKind int

// Resolution state of a reference.
// ENUM(pending, resolved, never-defined)
type Resolution int

// When off-document item has to be handed to the renderer.
// ENUM(immediately, after-page, end-of-document)
type ExtensionTiming int

// Marker retrieval position within a page.
// ENUM(first-starting, first-including-carryover, last-starting, last-ending)
type RetrievePosition int

// Lifecycle of a page as seen by the scheduler.
// ENUM(formatted, prepared, queued, rendered, failed)
type PageState int
