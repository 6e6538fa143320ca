package area

// Resolvable is implemented by everything which depends on IDs not known at
// the time it was created: content areas, pages holding such areas and
// off-document items like bookmarks and named destinations.
//
// ResolveIDRef with nil pages is used at the end of the document for IDs which
// were never defined. Implementations must treat such call as final and stop
// waiting on the ID.
type Resolvable interface {
	IDRefs() []string
	IsResolved() bool
	ResolveIDRef(id string, pages []*PageViewport)
}

// lastLocationWaiter is implemented by resolvables which need every page an
// ID is defined on, not just the first one. Registry keeps them waiting after
// the first definition until the ID is complete.
type lastLocationWaiter interface {
	WaitsForAllLocations(id string) bool
}

func waitsForAllLocations(res Resolvable, id string) bool {
	w, ok := res.(lastLocationWaiter)
	return ok && w.WaitsForAllLocations(id)
}
