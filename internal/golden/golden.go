// Package golden provides golden-file comparison helpers for the
// toolchain's end-to-end tests: generated text (currently the emitted NASM
// assembly) is compared against a checked-in expected file rather than
// inline string literals.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var updateAllTests = flag.Bool("test.update-all-tests", false, "If set, sets all test.update-*-tests.")

// SourceFiles returns the list of files in dir with the given extension
// (".vx" for source fixtures, for instance).
func SourceFiles(t *testing.T, dir, ext string) []os.FileInfo {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	res := make([]os.FileInfo, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		if ext != "" && filepath.Ext(dent.Name()) != ext {
			continue
		}
		fi, err := dent.Info()
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, fi)
	}
	return res
}

// DiffOutput validates that output matches the golden file corresponding to
// fi in resultDir (fi.Name()+".want"). If updateFlag is true, it rewrites
// the golden file with output instead of comparing.
func DiffOutput(t *testing.T, fi os.FileInfo, output, resultDir string, updateFlag *bool) {
	t.Helper()
	DiffCustom(t, fi, "output", ".want", output, resultDir, updateFlag)
}

// DiffAssembly is DiffOutput specialized for generated NASM text, using the
// ".asm.want" extension so assembly goldens don't collide with AST/token
// dumps taken from the same source fixture.
func DiffAssembly(t *testing.T, fi os.FileInfo, output, resultDir string, updateFlag *bool) {
	t.Helper()
	DiffCustom(t, fi, "assembly", ".asm.want", output, resultDir, updateFlag)
}

// DiffCustom is the general form: label is used only in failure messages,
// ext is the golden file's suffix.
func DiffCustom(t *testing.T, fi os.FileInfo, label, ext, output, resultDir string, updateFlag *bool) {
	t.Helper()

	wantFile := filepath.Join(resultDir, fi.Name()+ext)
	diffOrUpdate(t, label, wantFile, output, updateFlag)
}

func diffOrUpdate(t *testing.T, label, goldFile, output string, updateFlag *bool) {
	t.Helper()

	if *updateFlag || *updateAllTests {
		if err := os.WriteFile(goldFile, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if testing.Verbose() {
		t.Logf("got %s:\n%s\n", label, output)
	}
	if patch := diff.Diff(want, output); patch != "" {
		if testing.Verbose() {
			t.Logf("want %s:\n%s\n", label, want)
		}
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
