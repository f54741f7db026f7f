// Package platform isolates the environment-facing concerns of the vxc
// toolchain: loading runtime configuration and invoking the external nasm
// assembler as a subprocess.
package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

// Config holds the environment-tunable knobs of the toolchain. Every field
// has a sensible zero-config default; the VXC_ prefix keeps it from
// colliding with unrelated variables in a developer's shell.
type Config struct {
	// NasmPath is the nasm executable to invoke for the assemble step.
	NasmPath string `env:"VXC_NASM_PATH" envDefault:"nasm"`

	// OutputFormat is the nasm -f value: win64 on Windows, elf64 elsewhere.
	// Left blank, LoadConfig fills it in from runtime.GOOS.
	OutputFormat string `env:"VXC_OUTPUT_FORMAT"`
}

// LoadConfig reads Config from the environment, applying defaults for any
// field left unset.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("platform: parsing environment: %w", err)
	}
	if c.OutputFormat == "" {
		c.OutputFormat = defaultOutputFormat()
	}
	return c, nil
}

// WriteAssembly writes asm to path, creating any missing parent
// directories.
func WriteAssembly(path string, asm []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("platform: creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, asm, 0o644); err != nil {
		return fmt.Errorf("platform: writing %s: %w", path, err)
	}
	return nil
}

// Assemble invokes the configured nasm binary to turn asmPath into an
// object file at objPath, per the Config's OutputFormat.
func Assemble(ctx context.Context, cfg Config, asmPath, objPath string) error {
	cmd := exec.CommandContext(ctx, cfg.NasmPath, "-f", cfg.OutputFormat, "-o", objPath, asmPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("platform: running %s: %w", cfg.NasmPath, err)
	}
	return nil
}
