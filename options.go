package rseq

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type (
	// Options control how the sequencer decodes the bytecode. The zero value
	// is the normal conversion mode.
	Options struct {
		// IgnoreJumps annotates jump commands without transferring control,
		// so decoding continues with the instruction after the jump.
		IgnoreJumps bool `yaml:"ignorejumps"`
		// DebugControllers re-emits opcodes that have no MIDI mapping as
		// pairs of generic controllers, so the original data survives in the
		// output for inspection.
		DebugControllers bool `yaml:"debugcontrollers"`
	}
)

// ReadConfig loads default options from config.yml in the user config
// directory. A missing file is not an error; the zero options are returned.
func ReadConfig() (Options, error) {
	var opts Options
	dir, err := os.UserConfigDir()
	if err != nil {
		return opts, nil
	}
	path := filepath.Join(dir, "rseq2mid", "config.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return opts, nil
}
