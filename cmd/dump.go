package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"strumboli/lib/config"
	"strumboli/lib/device"
	"strumboli/lib/tablet"
)

var dumpRaw bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false, "print raw report bytes instead of decoded frames")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print tablet frames as they arrive, for writing driver profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpFrames()
	},
}

func dumpFrames() error {
	cfg, err := config.Load(settingsFile, driversDir)
	if err != nil {
		return err
	}
	tab := cfg.Startup.DrawingTablet.Tablet

	devs, err := device.Open(tab)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	fmt.Printf("Reading from %d interface(s), report id %d. Ctrl+C to stop.\n", len(devs), tab.ReportID)

	reports := make(chan device.Report, 64)
	for _, d := range devs {
		go func(d *device.Device) {
			if err := d.ReadReports(reports); err != nil {
				fmt.Fprintf(os.Stderr, "reader stopped: %v\n", err)
			}
		}(d)
	}

	dec := &tablet.Decoder{Table: tab.Mappings}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			fmt.Println()
			return nil
		case r := <-reports:
			if dumpRaw {
				fmt.Printf("% x\n", r.Data)
				continue
			}
			fmt.Println(formatFrame(dec.Decode(r.Data)))
		}
	}
}

func formatFrame(f tablet.Frame) string {
	parts := []string{fmt.Sprintf("state=%s", f.State)}

	names := make([]string, 0, len(f.Values))
	for name := range f.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, f.Values[name]))
	}

	for i := 1; i <= 8; i++ {
		if f.Buttons[i] {
			parts = append(parts, fmt.Sprintf("button%d", i))
		}
	}
	for flag, on := range f.Flags {
		if on {
			parts = append(parts, flag)
		}
	}
	return strings.Join(parts, " ")
}
