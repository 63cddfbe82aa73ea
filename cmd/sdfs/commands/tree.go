package commands

import (
	"fmt"
	"path"
	"strings"

	"github.com/rstms/sdfs/image"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show every entry of a card image with its attributes",
	Long: `Walk the whole FAT volume of a card image, including the entries the UI
never lists, and show each with its DOS attributes (d directory,
r read only, h hidden, s system, a archive) and size.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.Image == "" {
			return fmt.Errorf("tree needs a card image (--image)")
		}
		img, err := image.OpenImage(cfg.Image)
		if err != nil {
			return err
		}
		defer img.Close()

		records, err := img.ScanFiles()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, record := range records {
			fmt.Fprintln(w, treeLine(record))
		}
		return nil
	},
}

func treeLine(record image.FileRecord) string {
	depth := strings.Count(strings.Trim(record.Name, "/"), "/")
	name := path.Base(record.Name)
	if record.Dir {
		name = dirStyle.Render(name + "/")
	}
	line := fmt.Sprintf("%s %8d  %s%s", attrStyle.Render(record.Attr.String()), record.Size, strings.Repeat("  ", depth), name)
	if IsVerbose() && record.ShortName != "" && record.ShortName != strings.ToUpper(path.Base(record.Name)) {
		line += attrStyle.Render(" (" + record.ShortName + ")")
	}
	return line
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
