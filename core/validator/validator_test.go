package validator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/checklist/core/ast"
	"github.com/tristendillon/checklist/core/config"
	"github.com/tristendillon/checklist/core/walker"
)

// tree writes files under a fresh library root named pkg and returns it.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "pkg")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func checks(t *testing.T, root string) []Validator {
	t.Helper()
	validators, err := NewSet(config.Default(), root, nil)
	require.NoError(t, err)
	return validators
}

func apiCheck(root string, markersOnly bool) APIRegressionValidator {
	cfg := config.Default()
	cfg.Registry.MarkersOnly = markersOnly
	return NewAPIRegressionValidator(cfg, root, walker.NewTreeWalker(nil), ast.NewParser())
}

func TestEmptyTreePassesEveryCheck(t *testing.T) {
	root := tree(t, nil)

	report, err := Run(root, checks(t, root))
	require.NoError(t, err)
	require.Len(t, report.Results, 4)
	for _, res := range report.Results {
		assert.True(t, res.Success, res.Name)
		assert.Empty(t, res.Lines, res.Name)
	}
	assert.False(t, report.Failed())
	assert.Equal(t, 0, report.ExitCode())
	assert.Empty(t, report.String())
}

func TestEmptyNestedDirectoriesPassEveryCheck(t *testing.T) {
	root := tree(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "other"), 0o755))

	report, err := Run(root, checks(t, root))
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.True(t, res.Success, res.Name)
		assert.Empty(t, res.Lines, res.Name)
	}
	assert.Empty(t, report.String())
}

func TestInitValidatorFlagsAncestorsOfFiles(t *testing.T) {
	root := tree(t, map[string]string{
		"a/b/c/mod.py": "",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "empty", "nested"), 0o755))
	v := InitValidator{Walker: walker.NewTreeWalker(nil), Marker: "__init__.py"}

	ok, lines := v.Validate(root)
	assert.False(t, ok)
	assert.Equal(t, []string{
		InitReason + ":",
		"    " + root,
		"    " + filepath.Join(root, "a"),
		"    " + filepath.Join(root, "a", "b"),
		"    " + filepath.Join(root, "a", "b", "c"),
	}, lines)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestInitValidator(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":                "",
		"io/__init__.py":             "",
		"io/tests/test_io.py":        "",
		"io/tests/data/example.py":   "",
		"stats/README":               "",
		"stats/__pycache__/x.pyc":    "",
		"stats/distance/__init__.py": "",
	})
	v := InitValidator{Walker: mustWalker(t, config.Default()), Marker: "__init__.py"}

	ok, lines := v.Validate(root)
	assert.False(t, ok)
	assert.Equal(t, []string{
		InitReason + ":",
		"    " + filepath.Join(root, "io", "tests"),
		"    " + filepath.Join(root, "stats"),
	}, lines)
}

func TestExecPermissionValidator(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py": "",
		"run.py":      "",
		"fast.c":      "",
		"script.sh":   "",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "run.py"), 0o755))
	require.NoError(t, os.Chmod(filepath.Join(root, "fast.c"), 0o744))
	require.NoError(t, os.Chmod(filepath.Join(root, "script.sh"), 0o755))

	v := ExecPermissionValidator{Walker: walker.NewTreeWalker(nil), Extensions: config.Default().Permissions.Extensions}
	ok, lines := v.Validate(root)
	assert.False(t, ok)
	assert.Equal(t, []string{
		ExecPermissionReason + ":",
		"    " + filepath.Join(root, "fast.c"),
		"    " + filepath.Join(root, "run.py"),
	}, lines)
}

func TestGeneratedArtifactValidator(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":  "",
		"missing.pyx":  "",
		"empty.pyx":    "",
		"empty.c":      "",
		"complete.pyx": "",
		"complete.c":   "int x;",
		"sub/only.c":   "int y;",
	})
	v := GeneratedArtifactValidator{Walker: walker.NewTreeWalker(nil), SourceExtension: ".pyx", ArtifactExtension: ".c"}

	ok, lines := v.Validate(root)
	assert.False(t, ok)
	assert.Equal(t, []string{
		GeneratedArtifactReason + ":",
		"    " + filepath.Join(root, "empty.pyx"),
		"    " + filepath.Join(root, "missing.pyx"),
	}, lines)
}

func TestAPIRegressionScenarioA(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":               "",
		"sub/__init__.py":           "from .mod import foo\n",
		"sub/mod.py":                "def foo():\n    pass\n",
		"sub/tests/__init__.py":     "",
		"sub/tests/test_mod.py":     "from pkg.sub.mod import foo\n",
		"sub/tests/test_minimal.py": "from pkg.sub import foo\n",
	})

	ok, lines := apiCheck(root, false).Validate(root)
	assert.False(t, ok)
	assert.Equal(t, []string{
		APIRegressionReason + ":",
		"    " + filepath.Join(root, "sub", "tests", "test_mod.py") + ": pkg.sub.mod.foo => pkg.sub.foo",
	}, lines)
}

func TestAPIRegressionRegistryBuiltBeforeChecking(t *testing.T) {
	// The test directory sorts before the package that shortens the path.
	root := tree(t, map[string]string{
		"__init__.py":           "",
		"a/__init__.py":         "",
		"a/tests/__init__.py":   "",
		"a/tests/test_thing.py": "from pkg.z.deep.mod import thing\n",
		"z/__init__.py":         "from .deep.mod import thing\n",
		"z/deep/__init__.py":    "",
		"z/deep/mod.py":         "thing = 1\n",
	})

	analysis := apiCheck(root, false).Analyze(context.Background(), root)
	require.Empty(t, analysis.Errors)
	require.Len(t, analysis.Violations, 1)
	assert.Equal(t, "pkg.z.thing", analysis.Violations[0].MinimalImport.String())
}

func TestAPIRegressionScenarioB(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":         "",
		"tests/__init__.py":   "",
		"tests/test_x.py":     "from pkg.helpers.deep.util import only_in_tests\n",
		"tests/test_other.py": "import pkg.helpers.deep.util.only_in_tests\n",
	})

	analysis := apiCheck(root, false).Analyze(context.Background(), root)
	_, registered := analysis.Registry.Lookup("only_in_tests")
	assert.False(t, registered)
	assert.Empty(t, analysis.Violations)

	ok, lines := apiCheck(root, false).Validate(root)
	assert.True(t, ok)
	assert.Empty(t, lines)
}

func TestAPIRegressionScenarioC(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":      "",
		"broken.py":        "def broken(:\n    pass\n",
		"sub/__init__.py":  "from pkg.sub.mod.impl import foo\n",
		"tests/test_ok.py": "from pkg.sub import foo\n",
	})

	analysis := apiCheck(root, false).Analyze(context.Background(), root)
	entry, ok := analysis.Registry.Lookup("foo")
	require.True(t, ok)
	assert.Equal(t, "pkg.sub.foo", entry.Path.String())
	assert.Empty(t, analysis.Violations)
	require.Len(t, analysis.Errors, 1)

	var perr *ast.ParseError
	require.ErrorAs(t, analysis.Errors[0], &perr)
	assert.Equal(t, filepath.Join(root, "broken.py"), perr.File)

	passed, lines := apiCheck(root, false).Validate(root)
	assert.False(t, passed)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], filepath.Join(root, "broken.py")+": syntax error at line 1")
}

func TestAPIRegressionRelativeBeyondRoot(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py": "from .. import outside\n",
	})

	ok, lines := apiCheck(root, false).Validate(root)
	assert.False(t, ok)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "relative import beyond top-level package")
}

func TestAPIRegressionUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := tree(t, map[string]string{
		"__init__.py":     "",
		"secret.py":       "import pkg.a\n",
		"sub/__init__.py": "from pkg.sub.impl.mod import foo\n",
	})
	secret := filepath.Join(root, "secret.py")
	require.NoError(t, os.Chmod(secret, 0o000))
	t.Cleanup(func() { _ = os.Chmod(secret, 0o644) })

	analysis := apiCheck(root, false).Analyze(context.Background(), root)
	require.Len(t, analysis.Errors, 1)
	assert.ErrorIs(t, analysis.Errors[0], os.ErrPermission)
	_, ok := analysis.Registry.Lookup("foo")
	assert.True(t, ok)
}

func TestAPIRegressionIdempotent(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":           "from pkg.stats.distance._base import DistanceMatrix\n",
		"stats/__init__.py":     "",
		"stats/distance.py":     "from ._impl.core import mantel\n",
		"tests/test_stats.py":   "from pkg.stats.distance._base import DistanceMatrix\nfrom pkg.stats._impl.core import mantel\n",
		"stats/tests/test_d.py": "from pkg import DistanceMatrix\n",
	})

	v := apiCheck(root, false)
	first := v.Analyze(context.Background(), root)
	second := v.Analyze(context.Background(), root)

	assert.Equal(t, first.Registry.Symbols(), second.Registry.Symbols())
	for _, s := range first.Registry.Symbols() {
		a, _ := first.Registry.Lookup(s)
		b, _ := second.Registry.Lookup(s)
		assert.Equal(t, a, b)
	}
	assert.Equal(t, first.Violations, second.Violations)
	require.Len(t, first.Violations, 2)
	assert.Equal(t, "pkg.DistanceMatrix", first.Violations[0].MinimalImport.String())
	assert.Equal(t, "pkg.stats.distance.mantel", first.Violations[1].MinimalImport.String())
}

func TestAPIRegressionMarkersOnly(t *testing.T) {
	root := tree(t, map[string]string{
		"__init__.py":      "",
		"mod.py":           "from pkg.a.b.c import foo\n",
		"tests/test_it.py": "from pkg.a.b.c import foo\n",
	})

	// mod.py re-exports foo as pkg.mod.foo unless only markers count.
	ok, _ := apiCheck(root, false).Validate(root)
	assert.False(t, ok)

	ok, lines := apiCheck(root, true).Validate(root)
	assert.True(t, ok)
	assert.Empty(t, lines)
}

func TestReportFormatting(t *testing.T) {
	root := tree(t, map[string]string{
		"lib/thing.py": "",
		"x.pyx":        "",
	})

	report, err := Run(root, checks(t, root))
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.Equal(t, 1, report.ExitCode())

	want := InitReason + ":\n" +
		"    " + root + "\n" +
		"    " + filepath.Join(root, "lib") + "\n\n" +
		GeneratedArtifactReason + ":\n" +
		"    " + filepath.Join(root, "x.pyx") + "\n\n"
	assert.Equal(t, want, report.String())

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)
	assert.Equal(t, want, buf.String())
}

func mustWalker(t *testing.T, cfg *config.Config) walker.Walker {
	t.Helper()
	m, err := walker.NewMatcher(cfg.Walk.SkipDirs, cfg.Walk.Exclude)
	require.NoError(t, err)
	return walker.NewTreeWalker(m)
}
