package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI ports",
	Run: func(cmd *cobra.Command, args []string) {
		defer midi.CloseDriver()

		fmt.Println("MIDI output ports:")
		for _, p := range midi.GetOutPorts() {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println("MIDI input ports:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %s\n", p)
		}
	},
}
