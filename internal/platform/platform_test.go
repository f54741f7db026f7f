package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vxc/internal/platform"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("VXC_NASM_PATH")
	os.Unsetenv("VXC_OUTPUT_FORMAT")

	cfg, err := platform.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "nasm", cfg.NasmPath)
	require.NotEmpty(t, cfg.OutputFormat)
}

func TestLoadConfigHonorsEnvOverride(t *testing.T) {
	t.Setenv("VXC_NASM_PATH", "/opt/nasm/bin/nasm")
	t.Setenv("VXC_OUTPUT_FORMAT", "elf64")

	cfg, err := platform.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "/opt/nasm/bin/nasm", cfg.NasmPath)
	require.Equal(t, "elf64", cfg.OutputFormat)
}

func TestWriteAssemblyCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.asm")

	err := platform.WriteAssembly(path, []byte("segment .text\n"))
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "segment .text\n", string(got))
}
