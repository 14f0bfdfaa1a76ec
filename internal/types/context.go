package types

// EvalContext is the per-call immutable configuration bundle threaded
// through a selector tree's evaluation. It is built once by the driver
// from the host's current parameters and never mutated afterward.
type EvalContext struct {
	// MergeOutputFormat overrides the synthesized container extension
	// when merging streams; empty means "no override".
	MergeOutputFormat string

	AllowMultipleAudioStreams bool
	AllowMultipleVideoStreams bool

	// HasMergedFormat is true when at least one candidate in the
	// original format list already classifies as Merged.
	HasMergedFormat bool

	// IncompleteFormats is true when the candidate list, taken as a
	// whole, lacks any Video-satisfying or any Audio-satisfying
	// format — e.g. an audio-only or video-only source.
	IncompleteFormats bool

	// CheckFormat probes whether a single elementary format is
	// actually reachable (network-available, not geo-blocked, etc).
	// It is supplied by the host and may be nil, meaning "always
	// reachable".
	CheckFormat func(FormatDescriptor) bool

	// InfoDict is the enclosing record used as the base for filter
	// predicate evaluation; descriptor fields take precedence over it.
	InfoDict map[string]any
}
