package commands

import (
	"fmt"

	"github.com/rstms/sdfs/lvfs"
	"github.com/spf13/cobra"
)

const catBufferSize = 4096

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Copy a card file to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, card, err := openCard()
		if err != nil {
			return err
		}
		defer card.End()

		path := drivePath(card, args[0])
		f, res := reg.Open(path, lvfs.ModeRead)
		if res != lvfs.ResOK {
			return fmt.Errorf("%s: open failed: %s", path, res)
		}
		defer f.Close()

		w := cmd.OutOrStdout()
		buf := make([]byte, catBufferSize)
		for {
			n, res := f.Read(buf)
			if res != lvfs.ResOK {
				// a failed read is the end of the file
				return nil
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
