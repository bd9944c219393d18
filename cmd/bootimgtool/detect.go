package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bootimg"
	"bootimg/log"
)

var detectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Print the layout of one or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Errorf("%s: %v", path, err)
				failed++
				continue
			}
			v, _ := bootimg.Detect(data)
			fmt.Printf("%s: %s\n", path, v)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be read", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
