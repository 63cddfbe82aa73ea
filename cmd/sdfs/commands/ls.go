package commands

import (
	"github.com/spf13/cobra"
)

var lsFormat string

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List the plain files in a card directory",
	Long: `List the plain files directly under a card directory, in the order the
card stores them. Subdirectories, "." and "..", and "._" metadata files
are left out, exactly as the UI sees the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) > 0 {
			path = args[0]
		}
		reg, card, err := openCard()
		if err != nil {
			return err
		}
		defer card.End()

		files := reg.ReadDirectoryFileList(drivePath(card, path))
		return output(cmd.OutOrStdout(), files, OutputFormat(lsFormat))
	},
}

func init() {
	lsCmd.Flags().StringVarP(&lsFormat, "format", "f", "raw", "output format (yaml, json, raw)")
	rootCmd.AddCommand(lsCmd)
}
