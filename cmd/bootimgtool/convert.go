package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bootimg"
)

var (
	convertTarget string
	convertAboot  string
)

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Rewrite an image in another layout",
	Long: `Rewrite an image in another layout.

Examples:
  # Strip the Loki patch from an image
  bootimgtool convert loki.img boot.img --target android

  # Apply a Loki patch using the device's aboot partition
  bootimgtool convert boot.img loki.img --target loki --aboot aboot.img`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := bootimg.LoadFile(args[0])
		if err != nil {
			return err
		}
		v, err := targetVariant(convertTarget, img.TargetVariant())
		if err != nil {
			return err
		}
		img.SetTargetVariant(v)

		if convertAboot != "" {
			aboot, err := os.ReadFile(convertAboot)
			if err != nil {
				return &bootimg.IOError{Op: "read", Path: convertAboot, Err: err}
			}
			img.SetAbootImage(aboot)
		}

		if err := img.CreateFile(args[1]); err != nil {
			return err
		}
		fmt.Printf("Converted %s image to %s\n", img.SourceVariant(), v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertTarget, "target", "t", "", "target variant (android, loki, bump, mtk, sonyelf)")
	convertCmd.Flags().StringVar(&convertAboot, "aboot", "", "aboot image, required for loki")
}
