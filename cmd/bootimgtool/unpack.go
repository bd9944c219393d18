package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bootimg"
)

var unpackDir string

var unpackCmd = &cobra.Command{
	Use:   "unpack FILE",
	Short: "Split an image into its component files",
	Long: `Split an image into its component files.

Examples:
  # Unpack into ./out
  bootimgtool unpack boot.img -d out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := bootimg.LoadFile(args[0])
		if err != nil {
			return err
		}
		dir := unpackDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		if err := img.Unpack(dir); err != nil {
			return err
		}
		fmt.Printf("Unpacked %s image to %s\n", img.SourceVariant(), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unpackCmd)
	unpackCmd.Flags().StringVarP(&unpackDir, "dir", "d", "", "output directory")
}
