package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bootimg"
)

var (
	packOutput string
	packTarget string
)

var packCmd = &cobra.Command{
	Use:   "pack DIR",
	Short: "Build an image from unpacked component files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := bootimg.Repack(args[0])
		if err != nil {
			return err
		}
		v, err := targetVariant(packTarget, img.TargetVariant())
		if err != nil {
			return err
		}
		img.SetTargetVariant(v)

		out := packOutput
		if out == "" {
			out = filepath.Join(cfg.OutputDir, bootimg.NEW_BOOT)
		}
		if err := img.CreateFile(out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s image to %s\n", v, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output image (default <output_dir>/"+bootimg.NEW_BOOT+")")
	packCmd.Flags().StringVarP(&packTarget, "target", "t", "", "target variant (android, loki, bump, mtk, sonyelf)")
}
