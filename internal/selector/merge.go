package selector

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/arlowind/streamselect/internal/types"
)

// FormatResolution renders a human-readable resolution label for d,
// falling back to def when nothing is known.
func FormatResolution(d types.FormatDescriptor, def string) string {
	if types.Classify(d) == types.Audio {
		return "audio only"
	}
	if d.Resolution != "" {
		return d.Resolution
	}
	if d.Width != 0 && d.Height != 0 {
		return strconv.Itoa(d.Width) + "x" + strconv.Itoa(d.Height)
	}
	if d.Height != 0 {
		return strconv.Itoa(d.Height) + "p"
	}
	if d.Width != 0 {
		return strconv.Itoa(d.Width) + "x?"
	}
	return def
}

// Decompose walks descriptors (expanding any RequestedFormats) and
// yields elementary Audio/Video parts under a multiplicity policy: the
// first Audio part found is always emitted, and further Audio is
// suppressed unless optional is false and ctx allows multiple audio
// streams — symmetrically for Video. optional=true forces single-
// stream emission regardless of what ctx would otherwise allow.
//
// ctx may be nil, which behaves as "context permits multiple streams
// of either kind" (used by the driver's check-format decomposition,
// which has no merge context of its own).
func Decompose(descriptors []types.FormatDescriptor, ctx *types.EvalContext, optional bool) []types.FormatDescriptor {
	allowAudio := ctx == nil || ctx.AllowMultipleAudioStreams
	allowVideo := ctx == nil || ctx.AllowMultipleVideoStreams
	needsAudio, needsVideo := true, true

	var out []types.FormatDescriptor
	for _, f := range descriptors {
		parts := f.RequestedFormats
		if len(parts) == 0 {
			parts = []types.FormatDescriptor{f}
		}
		for _, p := range parts {
			emit := false
			if needsAudio && types.IsIn(types.Audio, p) {
				emit = true
				needsAudio = !optional && allowAudio
			}
			if needsVideo && types.IsIn(types.Video, p) {
				emit = true
				needsVideo = !optional && allowVideo
			}
			if emit {
				out = append(out, p)
			}
		}
	}
	return out
}

// Merge combines descriptors into one synthesized descriptor, honoring
// the multiplicity policy of Decompose. If exactly one elementary part
// remains after decomposition, it is returned unchanged (Merge's
// idempotence for a single stream).
func Merge(descriptors []types.FormatDescriptor, ctx *types.EvalContext, optional bool) types.FormatDescriptor {
	parts := Decompose(descriptors, ctx, optional)
	if len(parts) == 1 {
		return parts[0]
	}

	var videoFmts, audioFmts []types.FormatDescriptor
	for _, p := range parts {
		if types.IsIn(types.Video, p) {
			videoFmts = append(videoFmts, p)
		}
		if types.IsIn(types.Audio, p) {
			audioFmts = append(audioFmts, p)
		}
	}

	var onlyVideo, onlyAudio types.FormatDescriptor
	if len(videoFmts) == 1 {
		onlyVideo = videoFmts[0]
	}
	if len(audioFmts) == 1 {
		onlyAudio = audioFmts[0]
	}

	merged := types.FormatDescriptor{
		Ext:              resolveMergeExt(ctx, onlyVideo, onlyAudio, len(videoFmts)),
		RequestedFormats: parts,
		Format:           joinNonEmpty(parts, func(d types.FormatDescriptor) string { return d.Format }),
		FormatID:         joinNonEmpty(parts, func(d types.FormatDescriptor) string { return d.FormatID }),
		Protocol:         joinProtocols(parts),
		Language:         joinUnique(parts, func(d types.FormatDescriptor) string { return d.Language }),
		FormatNote:       joinUnique(parts, func(d types.FormatDescriptor) string { return d.FormatNote }),
		FilesizeApprox:   sumFilesize(parts),
		TBR:              sumBitrate(parts),
		Width:            onlyVideo.Width,
		Height:           onlyVideo.Height,
		FPS:              onlyVideo.FPS,
		DynamicRange:     onlyVideo.DynamicRange,
		VCodec:           onlyVideo.VCodec,
		VBR:              onlyVideo.VBR,
		StretchedRatio:   onlyVideo.StretchedRatio,
		ACodec:           onlyAudio.ACodec,
		ABR:              onlyAudio.ABR,
		ASR:              onlyAudio.ASR,
	}
	merged.Resolution = FormatResolution(onlyVideo, "unknown")
	return merged
}

func resolveMergeExt(ctx *types.EvalContext, onlyVideo, onlyAudio types.FormatDescriptor, videoCount int) string {
	if ctx != nil && ctx.MergeOutputFormat != "" {
		return ctx.MergeOutputFormat
	}
	if onlyVideo.Ext != "" {
		return onlyVideo.Ext
	}
	if videoCount == 0 && onlyAudio.Ext != "" {
		return onlyAudio.Ext
	}
	return "mkv"
}

func joinNonEmpty(parts []types.FormatDescriptor, field func(types.FormatDescriptor) string) string {
	var vals []string
	for _, p := range parts {
		if v := field(p); v != "" {
			vals = append(vals, v)
		}
	}
	return strings.Join(vals, "+")
}

func joinUnique(parts []types.FormatDescriptor, field func(types.FormatDescriptor) string) string {
	seen := make(map[string]bool, len(parts))
	var vals []string
	for _, p := range parts {
		v := field(p)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		vals = append(vals, v)
	}
	return strings.Join(vals, "+")
}

func joinProtocols(parts []types.FormatDescriptor) string {
	vals := make([]string, len(parts))
	for i, p := range parts {
		vals[i] = determineProtocol(p)
	}
	return strings.Join(vals, "+")
}

// determineProtocol derives a part's transport protocol, mirroring the
// source's own determine_protocol helper: an explicit stored Protocol
// wins; without one it is inferred from the URL, with manifest
// extensions special-cased and otherwise the URL scheme used.
func determineProtocol(d types.FormatDescriptor) string {
	if d.Protocol != "" {
		return d.Protocol
	}
	switch {
	case strings.Contains(d.URL, ".m3u8"):
		return "m3u8"
	case strings.Contains(d.URL, ".mpd"):
		return "http_dash_segments"
	}
	if u, err := url.Parse(d.URL); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return ""
}

func sumFilesize(parts []types.FormatDescriptor) *int64 {
	var sum int64
	for _, p := range parts {
		switch {
		case p.Filesize != nil:
			sum += *p.Filesize
		case p.FilesizeApprox != nil:
			sum += *p.FilesizeApprox
		}
	}
	if sum == 0 {
		return nil
	}
	return &sum
}

func sumBitrate(parts []types.FormatDescriptor) *float64 {
	var sum float64
	for _, p := range parts {
		switch {
		case p.TBR != nil:
			sum += *p.TBR
		case p.VBR != nil:
			sum += *p.VBR
		case p.ABR != nil:
			sum += *p.ABR
		}
	}
	if sum == 0 {
		return nil
	}
	return &sum
}
