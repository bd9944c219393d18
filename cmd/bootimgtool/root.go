package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bootimg"
	"bootimg/log"
)

var (
	verbose bool
	cfg     *Config
)

var rootCmd = &cobra.Command{
	Use:   "bootimgtool",
	Short: "Inspect, unpack and rebuild Android boot images",
	Long: `bootimgtool reads and writes Android boot images in the stock Android,
Loki, Bump, MTK and Sony ELF layouts.

Commands:
  detect      Print the layout of one or more images
  info        Show the header fields of an image
  unpack      Split an image into its component files
  pack        Build an image from unpacked component files
  convert     Rewrite an image in another layout`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = LoadConfig(); err != nil {
			return err
		}
		if cfg.Verbose || bootimg.CheckEnv("BOOTIMG_DEBUG") {
			log.SetDebug(true)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// targetVariant resolves the --target flag, falling back to the configured
// default and then to fallback.
func targetVariant(flag string, fallback bootimg.Variant) (bootimg.Variant, error) {
	name := flag
	if name == "" {
		name = cfg.Target
	}
	if name == "" {
		return fallback, nil
	}
	v := bootimg.Name2Variant(name)
	if v == bootimg.UNKNOWN {
		return bootimg.UNKNOWN, fmt.Errorf("unknown target variant %q", name)
	}
	return v, nil
}
