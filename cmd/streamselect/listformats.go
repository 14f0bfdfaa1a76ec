package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arlowind/streamselect/internal/selector"
	"github.com/arlowind/streamselect/internal/types"
)

var listFormatsCmd = &cobra.Command{
	Use:   "list-formats <formats.json>",
	Short: "Render the candidate format list as a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runListFormats,
}

func runListFormats(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return fmt.Errorf("loading formats: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "ext", "resolution", "bitrate", "size", "type"})
	table.SetAutoFormatHeaders(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, f := range doc.Formats {
		table.Append([]string{
			f.FormatID,
			f.Ext,
			selector.FormatResolution(f, "unknown"),
			bitrateLabel(f),
			sizeLabel(f),
			types.Classify(f).String(),
		})
	}
	table.Render()
	return nil
}

func bitrateLabel(f types.FormatDescriptor) string {
	switch {
	case f.TBR != nil:
		return fmt.Sprintf("%.0fk", *f.TBR)
	case f.VBR != nil && f.ABR != nil:
		return fmt.Sprintf("%.0fk", *f.VBR+*f.ABR)
	case f.VBR != nil:
		return fmt.Sprintf("%.0fk", *f.VBR)
	case f.ABR != nil:
		return fmt.Sprintf("%.0fk", *f.ABR)
	default:
		return "-"
	}
}
