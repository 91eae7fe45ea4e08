package main

import (
	"github.com/spf13/cobra"

	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.lnk>...",
		Short: "Decode .lnk files and print their fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := printerFor(cmd)
			for _, path := range args {
				l, err := shelllink.ReadFile(path)
				if err != nil {
					return err
				}
				if err := p.Link(path, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
