package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the defaults read from bootimgtool.yaml and BOOTIMG_* variables.
type Config struct {
	Target    string `mapstructure:"target"`
	Verbose   bool   `mapstructure:"verbose"`
	OutputDir string `mapstructure:"output_dir"`
}

// LoadConfig loads configuration using Viper
func LoadConfig() (*Config, error) {
	viper.SetConfigName("bootimgtool")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/bootimgtool")
	viper.AddConfigPath("/etc/bootimgtool")

	viper.SetDefault("target", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("output_dir", ".")

	viper.SetEnvPrefix("BOOTIMG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}
