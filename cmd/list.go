package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/nxv4l2/internal/config"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/spf13/cobra"
)

// CreateListCmd creates the list command.
func CreateListCmd() *cobra.Command {
	var asJSON, videoOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered V4L2 devices",
		Long:  `Scans sysfs once and prints every discovered device with its category, index, node and sensor flags.`,
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			reg, err := newRegistry(opts)
			if err != nil {
				fail(err)
			}
			if err := runList(cmd.OutOrStdout(), reg, videoOnly, asJSON); err != nil {
				fail(err)
			}
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&videoOnly, "video", false, "Only list capture video nodes")
	return cmd
}

func runList(w io.Writer, reg *devices.Registry, videoOnly, asJSON bool) error {
	list := reg.Entries
	if videoOnly {
		list = reg.VideoEntries
	}
	entries, err := list()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tINDEX\tNODE\tNAME\tSENSOR\tMIPI\tINTERLACED\tFRAMES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%t\t%t\t%s\n",
			e.Category, e.Index, e.NodePath, e.DeviceName, e.SensorName,
			e.IsMIPI, e.IsInterlaced, formatFrames(e.Frames))
	}
	return tw.Flush()
}

func formatFrames(frames []devices.FrameInfo) string {
	if len(frames) == 0 {
		return "-"
	}
	parts := make([]string, len(frames))
	for i, f := range frames {
		parts[i] = strconv.FormatUint(uint64(f.Width), 10) + "x" + strconv.FormatUint(uint64(f.Height), 10)
	}
	return strings.Join(parts, ",")
}
