package area

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Registry is the document scoped index of ID definitions and of everything
// still waiting for IDs to be defined. It is populated during a single
// formatting pass.
type Registry struct {
	log *zap.Logger

	// id -> pages defining it, in order of discovery
	locations map[string][]*PageViewport
	// id -> resolvables waiting for it, in order of registration
	waiting map[string][]Resolvable

	finalized bool
	dangling  []string
}

// NewRegistry creates empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:       log.Named("registry"),
		locations: make(map[string][]*PageViewport),
		waiting:   make(map[string][]Resolvable),
	}
}

// Define records that id is defined on page and notifies everything waiting
// for it. The same id could legitimately be defined on more than one page, so
// waiters which need every location of id are kept until Complete.
func (r *Registry) Define(id string, pv *PageViewport) {
	pages := r.locations[id]
	if slices.Contains(pages, pv) {
		return
	}
	pages = append(pages, pv)
	r.locations[id] = pages
	if len(pages) > 1 {
		r.log.Debug("ID defined on more than one page", zap.String("id", id), zap.Int("pages", len(pages)))
	}

	waiters, ok := r.waiting[id]
	if !ok {
		return
	}
	var ready, kept []Resolvable
	for _, res := range waiters {
		if waitsForAllLocations(res, id) {
			kept = append(kept, res)
		} else {
			ready = append(ready, res)
		}
	}
	if len(kept) > 0 {
		r.waiting[id] = kept
	} else {
		delete(r.waiting, id)
	}
	for _, res := range ready {
		res.ResolveIDRef(id, pages)
	}
}

// Complete resolves everything kept waiting on IDs which are already defined
// with the full list of their locations. It is called when no further
// definitions are expected, at the end of a page sequence and of the
// document. IDs never defined stay waiting.
func (r *Registry) Complete() int {
	var resolved int
	for _, id := range r.Waiting() {
		pages, defined := r.locations[id]
		if !defined {
			continue
		}
		waiters := r.waiting[id]
		delete(r.waiting, id)
		for _, res := range waiters {
			res.ResolveIDRef(id, pages)
			resolved++
		}
		r.log.Debug("ID complete", zap.String("id", id), zap.Int("pages", len(pages)), zap.Int("waiting", len(waiters)))
	}
	return resolved
}

// AddUnresolved registers res as waiting for id. Registry does not resolve
// on registration, callers are expected to check IsDefined first unless res
// needs every location of id.
func (r *Registry) AddUnresolved(id string, res Resolvable) {
	if r.finalized {
		// nothing will ever define it now
		res.ResolveIDRef(id, r.locations[id])
		return
	}
	if _, defined := r.locations[id]; defined && !waitsForAllLocations(res, id) {
		r.log.Debug("Registering wait for already defined ID", zap.String("id", id))
	}
	if slices.Contains(r.waiting[id], res) {
		return
	}
	r.waiting[id] = append(r.waiting[id], res)
}

// IsDefined reports if id has been seen on any page.
func (r *Registry) IsDefined(id string) bool {
	_, ok := r.locations[id]
	return ok
}

// Locations returns pages defining id.
func (r *Registry) Locations(id string) []*PageViewport {
	return r.locations[id]
}

// Waiting returns IDs which still have resolvables waiting for them.
func (r *Registry) Waiting() []string {
	ids := slices.Collect(maps.Keys(r.waiting))
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// Waiters returns number of resolvables waiting for id.
func (r *Registry) Waiters(id string) int {
	return len(r.waiting[id])
}

// Finalize completes defined IDs, resolves everything still waiting with nil
// pages so nothing is left pending forever and returns IDs which were never
// defined. Subsequent calls do nothing and return the same result.
func (r *Registry) Finalize() []string {
	if r.finalized {
		return r.dangling
	}
	r.Complete()
	r.finalized = true

	r.dangling = r.Waiting()
	for _, id := range r.dangling {
		waiters := r.waiting[id]
		delete(r.waiting, id)
		r.log.Warn("Reference to undefined ID", zap.String("id", id), zap.Int("waiting", len(waiters)))
		for _, res := range waiters {
			res.ResolveIDRef(id, nil)
		}
	}
	return r.dangling
}
