package commands

import (
	"github.com/rstms/sdfs/image"
	"github.com/spf13/cobra"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the card volume geometry and labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		info := map[string]any{
			"letter":     string(cfg.DriveLetter()),
			"cache_size": cfg.CacheSize,
		}
		if cfg.Image != "" {
			img, err := image.OpenImage(cfg.Image)
			if err != nil {
				return err
			}
			defer img.Close()
			volume, err := img.Info()
			if err != nil {
				return err
			}
			for k, v := range volume {
				info[k] = v
			}
			label, err := img.VolumeLabel()
			if err != nil {
				return err
			}
			info["volume_label"] = label
		} else {
			_, card, err := openCard()
			if err != nil {
				return err
			}
			card.End()
			info["mount"] = cfg.Mount
		}
		return output(cmd.OutOrStdout(), info, OutputFormat(infoFormat))
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "yaml", "output format (yaml, json)")
	rootCmd.AddCommand(infoCmd)
}
