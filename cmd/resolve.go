package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/nxv4l2/internal/config"
	"github.com/smazurov/nxv4l2/internal/devices"
	"github.com/smazurov/nxv4l2/internal/logging"
	"github.com/smazurov/nxv4l2/internal/nats"
	"github.com/spf13/cobra"
)

// CreateResolveCmd creates the resolve command.
func CreateResolveCmd() *cobra.Command {
	var natsURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a kernel device name to its category and index",
		Long: `Classifies a name such as "VIDEO CLIPPER0" or "nx-decimator1" and prints the slot and node it resolves to. ` +
			`Names that match no known prefix are resolved against the sensor names. ` +
			`With --nats the lookup is sent to a running service instead of scanning locally.`,
		Args: cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *config.Options) {
			if natsURL != "" {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := runRemoteResolve(ctx, cmd.OutOrStdout(), natsURL, args[0]); err != nil {
					fail(err)
				}
				return
			}

			reg, err := newRegistry(opts)
			if err != nil {
				fail(err)
			}
			if err := runResolve(cmd.OutOrStdout(), reg, args[0]); err != nil {
				fail(err)
			}
		}),
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "Resolve through the service at this NATS URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "NATS request timeout")
	return cmd
}

// CreatePathCmd creates the path command.
func CreatePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <category> <index>",
		Short: "Print the device node of a category and index",
		Args:  cobra.ExactArgs(2),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *config.Options) {
			reg, err := newRegistry(opts)
			if err != nil {
				fail(err)
			}
			if err := runPath(cmd.OutOrStdout(), reg, args[0], args[1]); err != nil {
				fail(err)
			}
		}),
	}
}

// CreateReverseCmd creates the reverse command.
func CreateReverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <node-path>",
		Short: "Print the category and index a device node was discovered under",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *config.Options) {
			reg, err := newRegistry(opts)
			if err != nil {
				fail(err)
			}
			if err := runReverse(cmd.OutOrStdout(), reg, args[0]); err != nil {
				fail(err)
			}
		}),
	}
}

func printSlot(w io.Writer, slot devices.Slot, e devices.Entry) {
	fmt.Fprintf(w, "%s %d %s\n", slot.Category, slot.Index, e.NodePath)
}

func runResolve(w io.Writer, reg *devices.Registry, name string) error {
	slot, e, err := reg.LookupName(name)
	if err != nil {
		return err
	}
	printSlot(w, slot, e)
	return nil
}

func runRemoteResolve(ctx context.Context, w io.Writer, url, name string) error {
	client, err := nats.Dial(url, logging.GetLogger("nats"))
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Lookup(ctx, nats.LookupRequest{Name: name})
	if err != nil {
		return err
	}
	if resp.Slot == nil || resp.Entry == nil {
		return fmt.Errorf("empty lookup response for %q", name)
	}
	printSlot(w, *resp.Slot, *resp.Entry)
	return nil
}

func runPath(w io.Writer, reg *devices.Registry, category, index string) error {
	cat, err := devices.ParseCategory(category)
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(index)
	if err != nil {
		return fmt.Errorf("%w: %q", devices.ErrIndexOutOfRange, index)
	}
	nodePath, err := reg.NodePath(cat, idx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, nodePath)
	return nil
}

func runReverse(w io.Writer, reg *devices.Registry, nodePath string) error {
	slot, err := reg.ReverseLookup(nodePath)
	if err != nil {
		return err
	}
	if !slot.Category.IsCapture() {
		fmt.Fprintf(w, "%s %d\n", slot.Category, slot.Index)
		return nil
	}
	mipi, interlaced, err := reg.CameraType(nodePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %d mipi=%t interlaced=%t\n", slot.Category, slot.Index, mipi, interlaced)
	return nil
}
