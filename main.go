package main

import (
	"errors"
	"fmt"

	"github.com/hedgelab/hedgelab/cmd"

	"github.com/spf13/viper"
)

func configureViper() {
	// read config file
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/hedgelab/")
	viper.AddConfigPath("$HOME/.config/hedgelab")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig() // Find and read the config file
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) { // a missing config file is fine; defaults and flags apply
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
}

func main() {
	configureViper()
	cmd.Execute()
}
