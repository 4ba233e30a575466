// Package config resolves modsync's runtime configuration with viper.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config file (TOML, YAML or JSON), environment variables and command-line
// flags. Every key can be set through a MODSYNC_-prefixed variable with dots
// replaced by underscores (MODSYNC_HTTP_TIMEOUT); the game version, mods
// directory and manifest path also honor GAME_VERSION, MODS_DIR and
// MODS_MANIFEST.
//
//	cfg, err := config.Load(config.LoadOptions{File: path, Flags: cmd.Flags()})
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
