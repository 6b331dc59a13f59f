// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package config manages JSON configuration loading for lakc. It handles
// target selection, optimization pipeline choice, and code generation and
// diagnostic toggles. Configuration is loaded from a lakc.json file with
// sensible defaults.
package config
