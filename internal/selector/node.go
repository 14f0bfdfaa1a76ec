package selector

import (
	"iter"
	"strings"

	"github.com/arlowind/streamselect/internal/types"
)

// Groups is a lazy sequence of candidate result-groups: each group is
// a set of descriptors that together satisfy a selector. Realizing
// only the first group whose members all pass the reachability check
// keeps the combinatorial cost of the product operators bounded.
type Groups = iter.Seq[[]types.FormatDescriptor]

// node is a single variant of the selector tree (§3: eight variants).
// Every variant carries an ordered list of filter predicates applied
// after selection.
type node interface {
	suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups
	addFilter(body string, pos int) error
	filters() []predicate
}

type base struct {
	preds []predicate
}

func (b *base) filters() []predicate { return b.preds }

func (b *base) addFilter(body string, pos int) error {
	pred, err := compileFilter(body)
	if err != nil {
		return &SyntaxError{Pos: pos, Note: "invalid filter specification: " + body}
	}
	// Dry run over an empty descriptor: the source validates a filter
	// at registration time by evaluating it against {}, catching any
	// runtime error and turning it into a compile-time syntax error.
	panicked := func() (p bool) {
		defer func() {
			if recover() != nil {
				p = true
			}
		}()
		pred(map[string]any{})
		return false
	}()
	if panicked {
		return &SyntaxError{Pos: pos, Note: "invalid filter specification: " + body}
	}
	b.preds = append(b.preds, pred)
	return nil
}

// process wraps a node's suitableFormats with filter evaluation: every
// descriptor in a yielded group is tested against n's filters, dropped
// if it fails, and the group itself is dropped if it becomes empty.
func process(n node, formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		for group := range n.suitableFormats(formats, ctx) {
			var kept []types.FormatDescriptor
			for _, f := range group {
				if matchFilters(f, n.filters(), ctx) {
					kept = append(kept, f)
				}
			}
			if len(kept) == 0 {
				continue
			}
			if !yield(kept) {
				return
			}
		}
	}
}

func matchFilters(f types.FormatDescriptor, preds []predicate, ctx *types.EvalContext) bool {
	if len(preds) == 0 {
		return true
	}
	var infoDict map[string]any
	if ctx != nil {
		infoDict = ctx.InfoDict
	}
	view := mergedView(f, infoDict)
	for _, p := range preds {
		if !p(view) {
			return false
		}
	}
	return true
}

// --- FormatID: by format_id or ext literal -----------------------------

type formatIDNode struct {
	base
	selector string
}

func newFormatID(s string) *formatIDNode { return &formatIDNode{selector: s} }

var audioExts = map[string]bool{"m4a": true, "mp3": true, "ogg": true, "aac": true}
var videoExts = map[string]bool{"mp4": true, "flv": true, "webm": true, "3gp": true}

func (n *formatIDNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		cond := func(f types.FormatDescriptor) bool { return f.FormatID == n.selector }
		switch {
		case audioExts[n.selector]:
			cond = func(f types.FormatDescriptor) bool {
				return f.Ext == n.selector && types.Classify(f) == types.Audio
			}
		case videoExts[n.selector]:
			if ctx.HasMergedFormat {
				cond = func(f types.FormatDescriptor) bool {
					return f.Ext == n.selector && types.Classify(f) == types.Merged
				}
			} else {
				// No pre-merged stream exists: fall back to matching a
				// video-only elementary track, for compatibility with
				// sources that never publish combined formats.
				cond = func(f types.FormatDescriptor) bool {
					return f.Ext == n.selector && types.Classify(f) == types.Video
				}
			}
		case n.selector == "mhtml":
			cond = func(f types.FormatDescriptor) bool {
				return f.Ext == n.selector && types.Classify(f) == types.Storyboards
			}
		}
		for _, f := range formats {
			if cond(f) {
				if !yield([]types.FormatDescriptor{f}) {
					return
				}
			}
		}
	}
}

// --- SelectAll / MergeAll: all (v|a|) (*?) ------------------------------

type selectAllNode struct {
	base
	what            string
	allowStoryboard bool
}

// newSelectAll coerces an empty "what" to "*" (bare "all" behaves as
// "all*"); this coercion does NOT apply to SelectBest/MergeBest, which
// store "what" verbatim (see selectBestNode).
func newSelectAll(what string) *selectAllNode {
	if what == "" {
		what = "*"
	}
	return &selectAllNode{what: what, allowStoryboard: true}
}

func isAllowedType(ft types.FormatType, what string, allowStoryboard bool) bool {
	switch ft {
	case types.Merged:
		return what == "" || strings.Contains(what, "*")
	case types.Video:
		return strings.Contains(what, "v") || what == "*"
	case types.Audio:
		return strings.Contains(what, "a") || what == "*"
	case types.Storyboards:
		return what == "*" && allowStoryboard
	default:
		return false
	}
}

func (n *selectAllNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return allowedFormats(formats, ctx, n.what, n.allowStoryboard)
}

// allowedFormats yields exactly one group: either the entire input
// (when ctx allows degrading to whatever media types exist, and "what"
// is the empty string) or every descriptor whose type "what" permits.
func allowedFormats(formats []types.FormatDescriptor, ctx *types.EvalContext, what string, allowStoryboard bool) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		if ctx.IncompleteFormats && what == "" {
			yield(formats)
			return
		}
		var group []types.FormatDescriptor
		for _, f := range formats {
			if isAllowedType(types.Classify(f), what, allowStoryboard) {
				group = append(group, f)
			}
		}
		yield(group)
	}
}

type mergeAllNode struct {
	base
	what string
}

func newMergeAll(what string) *mergeAllNode {
	if what == "" {
		what = "*"
	}
	return &mergeAllNode{what: what}
}

func (n *mergeAllNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		for group := range allowedFormats(formats, ctx, n.what, false) {
			merged := Merge(group, ctx, false)
			if !yield([]types.FormatDescriptor{merged}) {
				return
			}
		}
	}
}

// --- SelectBest / MergeBest: (all)? (b|w) (v|a|) (*?) (.n)? ({field})? -

type selectBestNode struct {
	base
	what  string // stored verbatim, NOT coerced to "*" when empty
	n     int
	field string
}

func newSelectBest(what string, n int, field string) *selectBestNode {
	if n == 0 {
		n = 1
	}
	return &selectBestNode{what: what, n: n, field: field}
}

func (n *selectBestNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return selectBestGroups(formats, ctx, n.what, n.n, n.field, false)
}

// selectBestGroups partitions each SelectAll-style group by field,
// then enumerates the Cartesian product of each bucket's nth-best
// (or, for n<0, nth-worst) pick onward: sort_formats slices from the
// nth position to the end rather than isolating a single element, so
// later, worse-ranked combinations remain available as fallback
// candidates if an earlier combination is later rejected downstream.
func selectBestGroups(formats []types.FormatDescriptor, ctx *types.EvalContext, what string, n int, field string, allowStoryboard bool) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		for group := range allowedFormats(formats, ctx, what, allowStoryboard) {
			buckets := partitionByField(group, field)
			pools := make([][]types.FormatDescriptor, len(buckets))
			for i, b := range buckets {
				pools[i] = nthOnward(b.items, n)
			}
			for combo := range cartesianProduct(pools) {
				if !yield(combo) {
					return
				}
			}
		}
	}
}

type fieldBucket struct {
	key   any
	items []types.FormatDescriptor
}

// partitionByField groups a candidate list by the value of field,
// preserving first-seen bucket order; descriptors missing the field
// fall into a shared "null" bucket. An empty field name groups
// everything into that single null bucket.
func partitionByField(group []types.FormatDescriptor, field string) []fieldBucket {
	index := make(map[any]int)
	var buckets []fieldBucket
	for _, f := range group {
		var key any
		if field != "" {
			if v, ok := f.Attr(field); ok {
				key = v
			}
		}
		if i, ok := index[key]; ok {
			buckets[i].items = append(buckets[i].items, f)
		} else {
			index[key] = len(buckets)
			buckets = append(buckets, fieldBucket{key: key, items: []types.FormatDescriptor{f}})
		}
	}
	return buckets
}

func nthOnward(bucket []types.FormatDescriptor, n int) []types.FormatDescriptor {
	items := bucket
	if n < 0 {
		items = make([]types.FormatDescriptor, len(bucket))
		for i, f := range bucket {
			items[len(bucket)-1-i] = f
		}
	}
	idx := n
	if idx < 0 {
		idx = -idx
	}
	idx--
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		return nil
	}
	return items[idx:]
}

type mergeBestNode struct {
	base
	what  string
	n     int
	field string
}

func newMergeBest(what string, n int, field string) *mergeBestNode {
	if n == 0 {
		n = 1
	}
	return &mergeBestNode{what: what, n: n, field: field}
}

func (n *mergeBestNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		for combo := range selectBestGroups(formats, ctx, n.what, n.n, n.field, false) {
			merged := Merge(combo, ctx, false)
			if !yield([]types.FormatDescriptor{merged}) {
				return
			}
		}
	}
}

// --- TakeAll (,), TakeFirst (/), Merge (+ / +?) -------------------------

type takeAllNode struct {
	base
	parts []node
}

func newTakeAll(parts ...node) *takeAllNode { return &takeAllNode{parts: parts} }

func (n *takeAllNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	childSeqs := make([]Groups, len(n.parts))
	for i, p := range n.parts {
		childSeqs[i] = process(p, formats, ctx)
	}
	return func(yield func([]types.FormatDescriptor) bool) {
		for combo := range productOfGroups(childSeqs) {
			var flat []types.FormatDescriptor
			for _, g := range combo {
				flat = append(flat, g...)
			}
			if !yield(flat) {
				return
			}
		}
	}
}

type takeFirstNode struct {
	base
	parts []node
}

func newTakeFirst(parts ...node) *takeFirstNode { return &takeFirstNode{parts: parts} }

func (n *takeFirstNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	return func(yield func([]types.FormatDescriptor) bool) {
		for _, p := range n.parts {
			for group := range process(p, formats, ctx) {
				if !yield(group) {
					return
				}
			}
		}
	}
}

type mergeNode struct {
	base
	left, right node
	optional    bool
}

func newMerge(left, right node, optional bool) *mergeNode {
	return &mergeNode{left: left, right: right, optional: optional}
}

func (n *mergeNode) suitableFormats(formats []types.FormatDescriptor, ctx *types.EvalContext) Groups {
	leftSeq := process(n.left, formats, ctx)
	rightSeq := process(n.right, formats, ctx)
	return func(yield func([]types.FormatDescriptor) bool) {
		for combo := range productOfGroups([]Groups{leftSeq, rightSeq}) {
			groupL, groupR := combo[0], combo[1]
			var merged []types.FormatDescriptor
			for _, a := range groupL {
				for _, b := range groupR {
					merged = append(merged, Merge([]types.FormatDescriptor{a, b}, ctx, n.optional))
				}
			}
			if !yield(merged) {
				return
			}
		}
	}
}

// --- Cartesian product helpers ------------------------------------------

// cartesianProduct yields one combination per call, taking exactly one
// element from each pool in order.
func cartesianProduct(pools [][]types.FormatDescriptor) iter.Seq[[]types.FormatDescriptor] {
	return func(yield func([]types.FormatDescriptor) bool) {
		if len(pools) == 0 {
			yield(nil)
			return
		}
		acc := make([]types.FormatDescriptor, len(pools))
		var rec func(i int) bool
		rec = func(i int) bool {
			if i == len(pools) {
				out := make([]types.FormatDescriptor, len(acc))
				copy(out, acc)
				return yield(out)
			}
			for _, item := range pools[i] {
				acc[i] = item
				if !rec(i + 1) {
					return false
				}
			}
			return true
		}
		rec(0)
	}
}

// productOfGroups realizes each child sequence into a pool of groups
// (matching itertools.product, which also fully consumes each input
// iterable up front) and then lazily enumerates their Cartesian
// product, one combination of groups per call.
func productOfGroups(children []Groups) iter.Seq[[][]types.FormatDescriptor] {
	pools := make([][][]types.FormatDescriptor, len(children))
	for i, c := range children {
		for group := range c {
			pools[i] = append(pools[i], group)
		}
	}
	return func(yield func([][]types.FormatDescriptor) bool) {
		if len(pools) == 0 {
			yield(nil)
			return
		}
		acc := make([][]types.FormatDescriptor, len(pools))
		var rec func(i int) bool
		rec = func(i int) bool {
			if i == len(pools) {
				out := make([][]types.FormatDescriptor, len(acc))
				copy(out, acc)
				return yield(out)
			}
			for _, item := range pools[i] {
				acc[i] = item
				if !rec(i + 1) {
					return false
				}
			}
			return true
		}
		rec(0)
	}
}
