// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"reflect"

	"github.com/lak-lang/lakc/cerrs"
)

// Config holds the settings that tune a compilation without changing the
// language itself: target selection, optimization, diagnostic style.
type Config struct {
	TargetTriple string        `json:"TargetTriple,omitempty"`
	OptPipeline  string        `json:"OptPipeline,omitempty"`
	Codegen      Codegen_t     `json:"Codegen"`
	Diagnostics  Diagnostics_t `json:"Diagnostics"`
}

type Codegen_t struct {
	DisableOverflowChecks bool `json:"DisableOverflowChecks,omitempty"`
	EmitTextIR            bool `json:"EmitTextIR,omitempty"`
}

type Diagnostics_t struct {
	Style string `json:"Style,omitempty"` // "plain" or "color"
}

const (
	ErrIsDirectory = cerrs.Error("is directory")
	ErrIsNotAFile  = cerrs.Error("is not a file")
)

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		TargetTriple: "x86_64-unknown-linux-gnu",
		OptPipeline:  "default<O0>",
		Diagnostics: Diagnostics_t{
			Style: "plain",
		},
	}
}

// Load reads name as a JSON configuration file, overlaying every non-zero
// field onto Default(). A missing, unreadable, or malformed file is not
// fatal: Load falls back to Default() and, when debug is set, logs why.
func Load(name string, debug bool) (*Config, error) {
	if debug {
		log.Printf("[config] %q: loading configuration...\n", name)
	}
	cfg := Default()
	if sb, err := os.Stat(name); errors.Is(err, os.ErrNotExist) || os.IsNotExist(err) {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if sb.Mode().IsDir() {
		return cfg, ErrIsDirectory
	} else if !sb.Mode().IsRegular() {
		return cfg, ErrIsNotAFile
	}

	var tmp Config
	if data, err := os.ReadFile(name); err != nil {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if err = json.Unmarshal(data, &tmp); err != nil {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if debug {
		if nice, err := json.MarshalIndent(tmp, "", "  "); err == nil {
			log.Printf("[config] %s\n", nice)
		} else {
			log.Printf("[config] %q: loaded %s\n", name, string(data))
		}
	}

	copyNonZeroFields(&tmp, cfg)
	return cfg, nil
}

// copyNonZeroFields recursively copies non-zero fields from src to dst using reflection
func copyNonZeroFields(src, dst interface{}) {
	srcVal := reflect.ValueOf(src)
	dstVal := reflect.ValueOf(dst)

	if srcVal.Kind() == reflect.Ptr {
		srcVal = srcVal.Elem()
	}
	if dstVal.Kind() == reflect.Ptr {
		dstVal = dstVal.Elem()
	}

	if srcVal.Kind() != reflect.Struct || dstVal.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < srcVal.NumField(); i++ {
		srcField := srcVal.Field(i)
		dstField := dstVal.Field(i)

		if !srcField.CanInterface() || !dstField.CanSet() {
			continue
		}
		if srcField.IsZero() {
			continue
		}

		switch srcField.Kind() {
		case reflect.Struct:
			copyNonZeroFields(srcField.Interface(), dstField.Addr().Interface())
		default:
			dstField.Set(srcField)
		}
	}
}
