package tool

import (
	"flag"

	"github.com/moyoez/calibre-panel/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseListen, "useListen", "", "override listen address, e.g. ':8088'")
	flag.StringVar(&cfg.UseSettingsPath, "useSettingsPath", "", "override the Calibre settings file path")
	flag.BoolVar(&cfg.SkipAccessFilter, "skipAccessFilter", false, "if true, accept requests from any network.")
	flag.Parse()
	return cfg
}

// ApplyFlags merges CLI overrides into cfg.
func ApplyFlags(cfg *types.AppConfig, flags types.Config) {
	if flags.UseListen != "" {
		cfg.Listen = flags.UseListen
	}
	if flags.UseSettingsPath != "" {
		cfg.SettingsPath = flags.UseSettingsPath
	}
	if flags.SkipAccessFilter {
		cfg.AllowedNetworks = nil
	}
}
