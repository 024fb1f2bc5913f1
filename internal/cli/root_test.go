package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI and returns its stdout, stderr and exit code.
func execute(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sqlcond", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "check", "dialects"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	dialectFlag := cmd.PersistentFlags().Lookup("dialect")
	require.NotNil(t, dialectFlag)
	assert.Equal(t, "d", dialectFlag.Shorthand)
	assert.Equal(t, "default", dialectFlag.DefValue)

	schemaFlag := cmd.PersistentFlags().Lookup("schema")
	require.NotNil(t, schemaFlag)
	assert.Equal(t, "s", schemaFlag.Shorthand)

	tzFlag := cmd.PersistentFlags().Lookup("timezone")
	require.NotNil(t, tzFlag)
	assert.Equal(t, "UTC", tzFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	stdout, stderr, code := execute(t, "", "--format", "xml", "dialects")
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `Error: invalid format "xml"`)

	_, stderr, code = execute(t, "", "--log-format", "logfmt", "dialects")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid log format "logfmt"`)
}

func TestConfigFile(t *testing.T) {
	config := writeFile(t, "sqlcond.yaml", "dialect: postgres\nschema: testdata/schema.yaml\n")

	stdout, stderr, code := execute(t, "", "--config", config, "compile", "testdata/filter.yaml")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, `"age" >= 18 AND "active" = true AND ("name" LIKE 'a%' OR "deleted_at" IS NULL)`+"\n", stdout)

	// Flags win over the config file.
	stdout, stderr, code = execute(t, "", "--config", config, "-d", "sqlite", "compile", "testdata/filter.yaml")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "`age` >= 18 AND `active` = 1 AND (`name` LIKE 'a%' OR `deleted_at` IS NULL)\n", stdout)
}

func TestConfigFileMissing(t *testing.T) {
	_, stderr, code := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "dialects")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "load config")
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("SQLCOND_DIALECT", "mssql")
	t.Setenv("SQLCOND_SCHEMA", "testdata/schema.yaml")

	stdout, stderr, code := execute(t, "", "compile", "testdata/range.json")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "[id] BETWEEN 1 AND 10 AND [name] IN (N'alice', N'bob')\n", stdout)
}

func TestVerboseLogging(t *testing.T) {
	_, stderr, code := execute(t, "", "-v", "--log-format", "json", "-s", "testdata/schema.yaml", "compile", "testdata/filter.yaml")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, `"msg":"compiler ready"`)
	assert.Contains(t, stderr, `"attributes":5`)

	_, stderr, code = execute(t, "", "-s", "testdata/schema.yaml", "compile", "testdata/filter.yaml")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stderr)
}
