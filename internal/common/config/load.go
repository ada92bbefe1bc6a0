package config

import (
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix             = "LEDGERLOAD"
	defaultConfigFileName = ".ledgerload"
)

// LoadConfigFile merges configuration into v from cfgFile, or from $HOME/.ledgerload.yaml when
// cfgFile is empty. A missing default file is not an error; a missing explicit file is.
// Environment variables prefixed with LEDGERLOAD_ override file values, with nested keys
// separated by underscores (LEDGERLOAD_FINERACT_URL).
func LoadConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "error getting user home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigName(defaultConfigFileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && cfgFile == "" {
			return nil
		}
		return errors.Wrapf(err, "error reading config file %s", v.ConfigFileUsed())
	}
	return nil
}

// Unmarshal decodes v into out using CustomHooks.
func Unmarshal(v *viper.Viper, out interface{}) error {
	return errors.WithStack(v.Unmarshal(out, CustomHooks...))
}
