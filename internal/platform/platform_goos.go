package platform

import "runtime"

// defaultOutputFormat picks nasm's -f value for the host OS: the compiler
// only targets the Windows x64 calling convention, but nasm itself still
// needs telling which object container to emit, so a non-Windows host
// defaults to elf64 purely to keep local development (running nasm, not
// the generated program) functional.
func defaultOutputFormat() string {
	if runtime.GOOS == "windows" {
		return "win64"
	}
	return "elf64"
}
