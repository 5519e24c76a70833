// Package config provides Fresh's layered configuration system.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. CLI overrides           │  ← WithCLIOverrides
//	├─────────────────────────────┤
//	│  2. Project file            │  ← <project config dir>/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Layer merging is by field presence (internal/config/layer.DeepMerge): a
// layer only needs to set the fields it wants to override, everything else
// falls through to the layer beneath it.
//
//	cfg := config.New(config.WithProjectConfigDir(".fresh"))
//	if err := cfg.Load(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	tabWidth, err := cfg.GetInt("editor.tabWidth")
package config
