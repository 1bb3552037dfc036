/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// GetUserSetVar returns values either command line flag or environment variable.
// An optional variable that was set in neither place is returned as an empty string.
func GetUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isSet || isOptional {
		return value, nil
	}

	return "", fmt.Errorf("neither %s (command line flag) nor %s (environment variable) have been set", flagName, envKey)
}

// LoadConfigFile fills the flags of cmd from a config file (any format viper reads: yaml, json, toml, env).
// Flags set on the command line are left alone. Environment variables named envPrefix + "_" + the
// upper-cased flag name (dashes become underscores) take precedence over the file.
func LoadConfigFile(cmd *cobra.Command, path, envPrefix string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var errSet error

	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Changed || !v.IsSet(flag.Name) {
			return
		}

		errSet = multierr.Append(errSet, cmd.Flags().Set(flag.Name, configValue(v, flag.Name)))
	})

	if errSet != nil {
		return fmt.Errorf("failed to apply config file %s: %w", path, errSet)
	}

	return nil
}

// Lists are joined with commas, the same way they are given on the command line.
func configValue(v *viper.Viper, key string) string {
	if _, isList := v.Get(key).([]interface{}); isList {
		return strings.Join(v.GetStringSlice(key), ",")
	}

	return v.GetString(key)
}
