package area

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"pageflow/utils/debug"
)

// String dumps registry state: every known ID with its pages and every ID
// still awaited.
func (r *Registry) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Registry: finalized=%t", r.finalized)

	ids := slices.Collect(maps.Keys(r.locations))
	sort.Sort(natural.StringSlice(ids))
	tw.Line(1, "Defined: %d", len(ids))
	for _, id := range ids {
		tw.Line(2, "%q", id)
		for _, pv := range r.locations[id] {
			tw.Line(3, "%s", pv)
		}
	}

	waiting := r.Waiting()
	tw.Line(1, "Waiting: %d", len(waiting))
	for _, id := range waiting {
		tw.Line(2, "%q: %d", id, len(r.waiting[id]))
	}
	tw.List(1, "Dangling", r.dangling)
	return tw.String()
}

// String dumps bookmark subtree with resolution state of every node.
func (b *BookmarkData) String() string {
	tw := debug.NewTreeWriter()
	var dump func(n *BookmarkData, depth int)
	dump = func(n *BookmarkData, depth int) {
		switch {
		case n.parent == nil && len(n.idRef) == 0:
			tw.Line(depth, "Bookmarks: children=%d waiting=%v", len(n.children), n.IDRefs())
		case n.page != nil:
			tw.Line(depth, "Bookmark -> %q [%s] %s", n.idRef, n.status, n.page)
		default:
			tw.Line(depth, "Bookmark -> %q [%s] waiting=%v", n.idRef, n.status, n.IDRefs())
		}
		if len(n.label) > 0 {
			tw.TextBlock(depth+1, "label", n.label)
		}
		for _, c := range n.children {
			dump(c, depth+1)
		}
	}
	dump(b, 0)
	return tw.String()
}
