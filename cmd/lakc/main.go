// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package main implements the lakc compiler driver.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/lak-lang/lakc/internal/config"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 1,
		Patch: 0,
		Build: semver.Commit(),
	}
	globalConfig *config.Config
)

func main() {
	for _, arg := range os.Args {
		if arg == "-version" || arg == "--version" {
			fmt.Printf("%s\n", version.Short())
			return
		} else if arg == "-build-info" || arg == "--build-info" {
			fmt.Printf("%s\n", version.String())
			return
		}
	}
	log.SetFlags(log.Lshortfile | log.Ltime)

	const configFileName = "lakc.json"
	debugConfigFile := false
	if sb, err := os.Stat(configFileName); err == nil && sb.Mode().IsRegular() {
		debugConfigFile = true
	}
	cfg, err := config.Load(configFileName, debugConfigFile)
	if err != nil && debugConfigFile {
		log.Printf("[config] %q: %v\n", configFileName, err)
	}

	if err := Execute(cfg); err != nil {
		log.Fatal(err)
	}
}

func Execute(cfg *config.Config) error {
	cmdRoot.PersistentFlags().BoolVar(&argsRoot.showVersion, "show-version", false, "show version")
	cmdRoot.PersistentFlags().StringVar(&argsRoot.logFile.name, "log-file", "", "set log file")

	cmdRoot.AddCommand(cmdBuild)
	cmdBuild.Flags().StringVar(&argsBuild.output, "output", "", "output path (defaults to the entry file's name)")
	cmdBuild.Flags().StringVar(&argsBuild.target, "target", "", "target triple (overrides configuration)")
	cmdBuild.Flags().BoolVar(&argsBuild.emitText, "emit-llvm", false, "emit textual LLVM IR instead of an object file")

	cmdRoot.AddCommand(cmdRun)
	cmdRun.Flags().StringVar(&argsBuild.output, "output", "", "accepted for parity with build; run writes no output")
	cmdRun.Flags().StringVar(&argsBuild.target, "target", "", "accepted for parity with build; run does not use it")

	cmdRoot.AddCommand(cmdVersion)

	if cfg == nil {
		globalConfig = config.Default()
	} else {
		globalConfig = cfg
	}

	return cmdRoot.Execute()
}

var argsRoot struct {
	logFile struct {
		name string
		fd   *os.File
	}
	showVersion bool
}

var cmdRoot = &cobra.Command{
	Use:   "lakc",
	Short: "Root command for the Lak compiler",
	Long:  `lakc compiles Lak source files to LLVM IR and, via an external linker, native executables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if argsRoot.logFile.name != "" {
			fd, err := os.OpenFile(argsRoot.logFile.name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
			if err != nil {
				return err
			}
			argsRoot.logFile.fd = fd
			log.SetOutput(argsRoot.logFile.fd)
			argsRoot.showVersion = true
		}
		if argsRoot.showVersion {
			log.Printf("version: %s\n", version)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if argsRoot.logFile.fd != nil {
			if err := log.Output(2, "log file closed"); err != nil {
				return err
			} else if err := argsRoot.logFile.fd.Close(); err != nil {
				return err
			}
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}
