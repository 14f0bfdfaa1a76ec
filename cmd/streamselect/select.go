package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arlowind/streamselect/internal/host"
	"github.com/arlowind/streamselect/internal/selector"
	"github.com/arlowind/streamselect/internal/types"
)

var selectCmd = &cobra.Command{
	Use:   "select <formats.json> <selector>",
	Short: "Evaluate a format selector against a candidate list and print the winning group",
	Args:  cobra.ExactArgs(2),
	RunE:  runSelect,
}

func init() {
	flags := selectCmd.Flags()
	flags.String("merge-output-format", "", "container extension override for synthesized merges")
	flags.Bool("allow-multiple-audio-streams", false, "permit more than one audio track per merge")
	flags.Bool("allow-multiple-video-streams", false, "permit more than one video track per merge")
	flags.Bool("check-formats-selected", false, "probe only the formats the selector actually picks")
	flags.String("unreachable-formats", "", "JSON file listing format ids to report as unreachable")
	_ = viper.BindPFlags(flags)
}

func runSelect(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return fmt.Errorf("loading formats: %w", err)
	}

	var unreachable map[string]bool
	if path := viper.GetString("unreachable-formats"); path != "" {
		if unreachable, err = host.LoadUnreachableFormats(path); err != nil {
			return fmt.Errorf("loading unreachable formats: %w", err)
		}
	}

	h := host.NewFileHost(host.Params{
		MergeOutputFormat:         viper.GetString("merge-output-format"),
		AllowMultipleAudioStreams: viper.GetBool("allow-multiple-audio-streams"),
		AllowMultipleVideoStreams: viper.GetBool("allow-multiple-video-streams"),
		CheckFormatsSelected:      viper.GetBool("check-formats-selected"),
	}, logger, unreachable)

	eval, err := selector.BuildFormatSelector(args[1], h)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprint(err.Error()))
		return err
	}

	group, err := eval(doc.Formats, doc.InfoDict)
	if err != nil {
		return err
	}

	if len(group) == 0 {
		fmt.Println("no candidate group satisfied the selector")
		return nil
	}

	for _, f := range group {
		label := color.Green.Sprint(f.FormatID)
		fmt.Printf("%s  ext=%s  res=%s  size=%s\n", label, f.Ext, selector.FormatResolution(f, "unknown"), sizeLabel(f))
	}
	return nil
}

func sizeLabel(f types.FormatDescriptor) string {
	switch {
	case f.Filesize != nil:
		return humanize.Bytes(uint64(*f.Filesize))
	case f.FilesizeApprox != nil:
		return "~" + humanize.Bytes(uint64(*f.FilesizeApprox))
	default:
		return "unknown"
	}
}
