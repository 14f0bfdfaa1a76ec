// Package host defines the contract the format-selection engine consumes
// from its caller: read-only merge-policy parameters plus a reachability
// probe, the reduced-to-essentials "host downloader object" spec.md treats
// as an external collaborator. This package also ships a file-backed
// reference implementation, FileHost, used by the CLI — it does no
// extraction or network I/O of its own, matching the engine's Non-goals.
package host

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/arlowind/streamselect/internal/types"
)

// Host is consumed by selector.BuildFormatSelector. Implementations supply
// the host's current merge-policy parameters and a probe for whether a
// given elementary format is actually reachable.
type Host interface {
	MergeOutputFormat() string
	AllowMultipleAudioStreams() bool
	AllowMultipleVideoStreams() bool

	// CheckFormatsSelected reports whether the host has opted into probing
	// only the formats the selector actually picked, rather than every
	// candidate up front.
	CheckFormatsSelected() bool
	CheckFormat(types.FormatDescriptor) bool

	// Logger is where the driver logs parse/compile diagnostics and
	// per-evaluation outcomes.
	Logger() zerolog.Logger
}

// Params holds the merge-policy parameters a Host exposes — the Go
// equivalent of the slice of ydl.params the reference build_format_selector
// reads off its downloader object.
type Params struct {
	MergeOutputFormat         string
	AllowMultipleAudioStreams bool
	AllowMultipleVideoStreams bool
	CheckFormatsSelected      bool
}

// FileHost is the reference Host the CLI wires up. Its reachability probe
// is backed by a small set of format ids loaded from a local file rather
// than a real network check: the engine's scope explicitly excludes network
// I/O, so this keeps check_format exercisable without crossing that line.
type FileHost struct {
	Params
	logger      zerolog.Logger
	unreachable map[string]bool
}

// NewFileHost builds a FileHost. A nil unreachable set makes CheckFormat
// always report the format as reachable.
func NewFileHost(params Params, logger zerolog.Logger, unreachable map[string]bool) *FileHost {
	return &FileHost{Params: params, logger: logger, unreachable: unreachable}
}

func (h *FileHost) MergeOutputFormat() string      { return h.Params.MergeOutputFormat }
func (h *FileHost) AllowMultipleAudioStreams() bool { return h.Params.AllowMultipleAudioStreams }
func (h *FileHost) AllowMultipleVideoStreams() bool { return h.Params.AllowMultipleVideoStreams }
func (h *FileHost) CheckFormatsSelected() bool      { return h.Params.CheckFormatsSelected }
func (h *FileHost) Logger() zerolog.Logger          { return h.logger }

func (h *FileHost) CheckFormat(f types.FormatDescriptor) bool {
	if h.unreachable == nil {
		return true
	}
	return !h.unreachable[f.FormatID]
}

// LoadUnreachableFormats reads a JSON array of format ids from path and
// returns them as a lookup set, the file-backed stand-in for a real
// availability probe.
func LoadUnreachableFormats(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeUnreachable(f)
}

func decodeUnreachable(r io.Reader) (map[string]bool, error) {
	var ids []string
	if err := json.NewDecoder(r).Decode(&ids); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
