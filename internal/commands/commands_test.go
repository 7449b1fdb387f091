package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kyat/internal/commands"
)

const statement = "စဉ်\tရက်စွဲ\tအချိန်\tအကြောင်းအရာ\tဝင်ငွေ\tသုံးငွေ\tလက်ကျန်ငွေ\tမှတ်ချက်\n" +
	"၁\t၀၁-၀၃-၂၀၂၄\t၁၀:၀၀\tLunch\t\t၅,၀၀၀\t-၅,၀၀၀\t\n"

type cli struct {
	t  *testing.T
	db string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("EXPORT_PDF_ENABLED", "false")

	return &cli{t: t, db: filepath.Join(t.TempDir(), "kyat.db")}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()

	var out, errOut bytes.Buffer

	cmd := commands.NewRootCommand(strings.NewReader(stdin), &out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", c.db}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestMigrate(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema is up to date\n", out)

	_, err = c.run("", "migrate")
	require.NoError(t, err)
}

func TestUserAdd(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("secret\n", "user", "add", "aung")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "user aung created")

	_, err = c.run("", "user", "add", "aung", "--password", "other")
	assert.ErrorContains(t, err, "username already exists")

	_, err = c.run("\n", "user", "add", "mya")
	assert.ErrorContains(t, err, "password cannot be empty")
}

func TestImportExportClosures(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "user", "add", "aung", "--password", "secret")
	require.NoError(t, err)

	in := filepath.Join(t.TempDir(), "summary_2024_03.txt")
	require.NoError(t, os.WriteFile(in, []byte(statement), 0o644))

	_, err = c.run("", "import", in)
	assert.ErrorContains(t, err, `required flag(s) "user" not set`)

	_, err = c.run("", "import", in, "--user", "nobody")
	assert.ErrorContains(t, err, "user not found")

	out, err := c.run("", "import", in, "--user", "aung")
	require.NoError(t, err)
	assert.Equal(t, "imported 1 entries, skipped 0\n", out)

	out, err = c.run("", "import", in, "--user", "aung")
	assert.ErrorContains(t, err, "1 entries already exist")
	assert.Contains(t, out, "conflict: E-")

	out, err = c.run("", "import", in, "--user", "aung", "--force")
	require.NoError(t, err)
	assert.Equal(t, "imported 0 entries, skipped 1\n", out)

	exported := filepath.Join(t.TempDir(), "march.txt")
	out, err = c.run("", "export", "--user", "aung", "--month", "2024-03", "-o", exported)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+exported+"\n", out)

	body, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(body), "၁\t၀၁-၀၃-၂၀၂၄\t၁၀:၀၀\tLunch\t\t၅,၀၀၀\t-၅,၀၀၀\t\n")

	_, err = c.run("", "export", "--user", "aung", "--month", "2024-03", "--format", "pdf", "-o", exported)
	assert.ErrorContains(t, err, "pdf export unavailable")

	out, err = c.run("", "closures", "--user", "aung")
	require.NoError(t, err)
	assert.Equal(t, "MONTH  TOTAL  CLOSED AT\n", out)
}
