// Package config provides configuration management for dmx.
//
// This package handles:
//   - Loading settings from ~/.config/dmx/config.json with viper
//   - Default configuration values for every key
//   - Environment overrides (DMX_ARL, DMX_QUALITY, DMX_OUTPUT, ...) and .env files
//   - Validated updates for the "dmx config set" command
//   - Conversion to PathConfig and TrackConfig for other packages
//
// # Loading
//
//	settings, err := config.Load("") // uses config.DefaultDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(settings.Qualities()) // e.g. [320 128]
//
// A missing config file is not an error; defaults are used.
//
// # Updating
//
//	if err := settings.Set("quality", "FLAC"); err != nil {
//	    // errors.Is(err, config.ErrInvalidValue) or config.ErrUnknownKey
//	}
//	err = settings.Save()
//
// The interactive session only reads output, quality and search_limit.
// Validation and persistence happen here and in the config subcommand.
package config
