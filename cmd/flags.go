package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds each named flag to its config key so flags override the
// config file and environment.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		cobra.CheckErr(viper.BindPFlag(key, flag))
	}
}

// tableList reads a table selection from config, lower cased with blanks
// dropped. Nil means every table.
func tableList(key string) []string {
	return normalizeTables(viper.GetStringSlice(key))
}

func normalizeTables(values []string) []string {
	names := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		name := strings.ToLower(strings.TrimSpace(v))
		return name, name != ""
	})
	if len(names) == 0 {
		return nil
	}
	return names
}
