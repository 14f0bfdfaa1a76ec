package selector

import (
	"github.com/google/uuid"

	"github.com/arlowind/streamselect/internal/host"
	"github.com/arlowind/streamselect/internal/types"
)

// BuildFormatSelector compiles spec into a selector tree and returns a
// closure that evaluates it against a concrete format list and info dict.
// Compile errors (tokenizer/parser *SyntaxError) surface here; the host
// supplies the runtime parameters (merge policy, check-format probe,
// logger) the closure needs on every call.
func BuildFormatSelector(spec string, h host.Host) (func(formats []types.FormatDescriptor, infoDict map[string]any) ([]types.FormatDescriptor, error), error) {
	root, err := Parse(spec)
	if err != nil {
		logger := h.Logger()
		logger.Debug().Err(err).Str("selector", spec).Msg("format selector failed to compile")
		return nil, err
	}

	return func(formats []types.FormatDescriptor, infoDict map[string]any) ([]types.FormatDescriptor, error) {
		evalID := uuid.NewString()
		logger := h.Logger()

		checker := newFormatChecker(h)
		ctx := buildEvalContext(formats, h, infoDict, checker.check)
		reversed := reverseFormats(formats)

		var result []types.FormatDescriptor
		if root != nil {
			for group := range process(root, reversed, ctx) {
				if checker.allReachable(group) {
					result = group
					break
				}
			}
		}

		logger.Debug().
			Str("eval_id", evalID).
			Str("selector", spec).
			Int("candidates", len(formats)).
			Int("selected", len(result)).
			Msg("format selection evaluated")

		return result, nil
	}, nil
}

// buildEvalContext derives the per-call flags a selector tree needs from
// the raw candidate list and the host's current parameters: has_merged_format
// and incomplete_formats are both pure functions of the list, recomputed on
// every call since the list may differ between calls to the same compiled
// selector.
func buildEvalContext(formats []types.FormatDescriptor, h host.Host, infoDict map[string]any, checkFormat func(types.FormatDescriptor) bool) *types.EvalContext {
	var hasVideo, hasAudio, hasMerged bool
	for _, f := range formats {
		switch types.Classify(f) {
		case types.Merged:
			hasMerged, hasVideo, hasAudio = true, true, true
		case types.Video:
			hasVideo = true
		case types.Audio:
			hasAudio = true
		}
	}
	return &types.EvalContext{
		MergeOutputFormat:         h.MergeOutputFormat(),
		AllowMultipleAudioStreams: h.AllowMultipleAudioStreams(),
		AllowMultipleVideoStreams: h.AllowMultipleVideoStreams(),
		HasMergedFormat:           hasMerged,
		IncompleteFormats:         !hasVideo || !hasAudio,
		CheckFormat:               checkFormat,
		InfoDict:                  infoDict,
	}
}

func reverseFormats(formats []types.FormatDescriptor) []types.FormatDescriptor {
	out := make([]types.FormatDescriptor, len(formats))
	for i, f := range formats {
		out[len(formats)-1-i] = f
	}
	return out
}

// formatChecker implements the driver's check_format closure (§4.5): with
// check-formats-selected opted out, every format is reachable; opted in,
// each elementary constituent is probed through the host's callback and
// memoized by format id so a shared part (e.g. audio reused across several
// candidate merges) is only probed once per top-level evaluation.
type formatChecker struct {
	host host.Host
	memo map[string]bool
}

func newFormatChecker(h host.Host) *formatChecker {
	return &formatChecker{host: h, memo: make(map[string]bool)}
}

func (c *formatChecker) check(f types.FormatDescriptor) bool {
	if !c.host.CheckFormatsSelected() {
		return true
	}
	if v, ok := c.memo[f.FormatID]; ok {
		return v
	}
	ok := c.host.CheckFormat(f)
	c.memo[f.FormatID] = ok
	return ok
}

// allReachable decomposes every outer descriptor in group into its
// elementary constituents and requires each to check out. ctx=nil bypasses
// the multiplicity policy entirely: the driver wants every constituent
// probed, not the subset a merge would actually keep.
func (c *formatChecker) allReachable(group []types.FormatDescriptor) bool {
	for _, f := range group {
		for _, part := range Decompose([]types.FormatDescriptor{f}, nil, false) {
			if !c.check(part) {
				return false
			}
		}
	}
	return true
}
