package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brixies/brix-cli/internal/bricks"
	"github.com/brixies/brix-cli/internal/catalog"
	"github.com/brixies/brix-cli/internal/config"
	"github.com/brixies/brix-cli/internal/testutil"
)

func setupOptions(t *testing.T, fix *testutil.Fixture, jsonOut, verbose, dry bool) *config.Options {
	t.Helper()
	opts := fix.Options(t, jsonOut, verbose, dry)
	config.SetCurrent(opts)
	t.Cleanup(func() { config.SetCurrent(nil) })
	return opts
}

type execResult struct {
	stdout string
	stderr string
	err    error
}

func execute(c *cobra.Command, stdin string, args ...string) execResult {
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)
	err := c.Execute()
	return execResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func decodePayload(t *testing.T, raw string) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload), raw)
	data, _ := payload["data"].(map[string]interface{})
	return payload, data
}

func classNames(doc *bricks.Document) []string {
	names := make([]string, 0, len(doc.GlobalClasses))
	for _, cls := range doc.GlobalClasses {
		names = append(names, cls.Name)
	}
	return names
}

func TestGenerateCommandSingleSection(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)

	res := execute(newGenerateCommand(), "", "Hero Banner", "--class", "Hero Banner=shop")
	require.NoError(t, res.err)

	doc, err := bricks.Parse([]byte(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "shop__title"}, classNames(doc))
	assert.True(t, doc.Provenance.IsZero())
	assert.NotContains(t, res.stdout, `"source"`)
	assert.Contains(t, res.stderr, "structural")
}

func TestGenerateCommandDownload(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, true, false, false)
	dir := t.TempDir()

	res := execute(newGenerateCommand(), "", "Hero Banner", "Footer Simple", "--download", "--dir", dir, "--move", "2:1")
	require.NoError(t, res.err)

	payload, data := decodePayload(t, res.stdout)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, true, data["written"])
	path, _ := data["path"].(string)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "brixies-export-"))
	assert.Equal(t, "brixies-export-"+data["exportId"].(string)+".json", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := bricks.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSource, doc.Provenance.Source)
	assert.Equal(t, []string{"footer-02", "card-footer-02", "hero-04", "hero-04__title"}, classNames(doc))
	assert.Len(t, doc.Content, 3)
}

func TestGenerateCommandInteractive(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)

	res := execute(newGenerateCommand(), "bad class!\npromo\n\ny\n", "Hero Banner", "Footer Simple", "-i")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `Class for "Hero Banner" [hero-04]`)
	assert.Contains(t, res.stderr, "invalid characters")

	doc, err := bricks.Parse([]byte(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, []string{"promo", "promo__title", "footer-02", "card-footer-02"}, classNames(doc))

	res = execute(newGenerateCommand(), "\n\nn\n", "Hero Banner", "Footer Simple", "-i")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "generation cancelled")
}

func TestGenerateCommandFailures(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)

	res := execute(newGenerateCommand(), "", "Unknown Section")
	assert.Equal(t, ExitCodeNotFound, ExitCode(res.err))
	assert.Contains(t, res.stderr, `section "Unknown Section" not found`)

	empty := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o600))
	res = execute(newGenerateCommand(), "", "--file", empty)
	assert.Equal(t, ExitCodeValidation, ExitCode(res.err))

	res = execute(newGenerateCommand(), "", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, ExitCodeFilesystem, ExitCode(res.err))

	res = execute(newGenerateCommand(), "", "Pricing Table")
	assert.Equal(t, ExitCodeFetch, ExitCode(res.err))
	assert.Contains(t, res.stderr, "fetch: Pricing Table")

	res = execute(newGenerateCommand(), "", "Hero Banner", "--class", "Footer Simple=x")
	assert.Equal(t, ExitCodeNotFound, ExitCode(res.err))

	res = execute(newGenerateCommand(), "", "Hero Banner", "--move", "1-2")
	assert.Equal(t, ExitCodeValidation, ExitCode(res.err))

	res = execute(newGenerateCommand(), "", "Hero Banner", "--catalog", filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, ExitCodeFetch, ExitCode(res.err))
}

func TestGenerateCommandReadsNamesFromStdin(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, true)
	target := filepath.Join(t.TempDir(), "export.json")

	res := execute(newGenerateCommand(), `["Hero Banner", "Footer Simple"]`, "-f", "-", "-o", target)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Dry-run: export with 2 section(s)")
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestResolveCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, true, false, false)

	res := execute(newResolveCommand(), "", "Hero Banner", "Unknown Section")
	require.NoError(t, res.err)

	payload, data := decodePayload(t, res.stdout)
	assert.Equal(t, true, payload["success"])
	sections := data["sections"].([]interface{})
	require.Len(t, sections, 1)
	assert.Equal(t, "hero-04", sections[0].(map[string]interface{})["originalClass"])
	issues := data["issues"].([]interface{})
	require.Len(t, issues, 1)
	assert.Equal(t, "lookup", issues[0].(map[string]interface{})["kind"])

	config.SetCurrent(nil)
	setupOptions(t, fix, false, false, false)
	res = execute(newResolveCommand(), "", "Footer Simple", "Blank Divider")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "SECTION")
	assert.Contains(t, res.stdout, "footer-02")

	res = execute(newResolveCommand(), "", "Nothing Here")
	assert.Equal(t, ExitCodeNotFound, ExitCode(res.err))
}

func TestRenameCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)
	src := fix.Path("catalog", "brixies", "hero", "hero-banner.json")

	res := execute(newRenameCommand(), "", src, "--prefix", "shop", "--ids", "hash")
	require.NoError(t, res.err)
	doc, err := bricks.Parse([]byte(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "shop__title"}, classNames(doc))
	assert.Contains(t, res.stderr, "warning:")

	again := execute(newRenameCommand(), "", src, "--prefix", "shop", "--ids", "hash")
	require.NoError(t, again.err)
	assert.Equal(t, res.stdout, again.stdout)

	res = execute(newRenameCommand(), testutil.FooterSimpleJSON, "-", "--prefix", "site-footer")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "card-site-footer")

	res = execute(newRenameCommand(), "", src, "--prefix", "bad prefix")
	assert.Equal(t, ExitCodeValidation, ExitCode(res.err))

	res = execute(newRenameCommand(), "", src, "--prefix", "shop", "--ids", "sequential")
	assert.Equal(t, ExitCodeValidation, ExitCode(res.err))

	res = execute(newRenameCommand(), `{"content":[{"children":[]}]}`, "-", "--prefix", "shop")
	assert.Equal(t, ExitCodeSchema, ExitCode(res.err))

	res = execute(newRenameCommand(), "", fix.Path("nope.json"), "--prefix", "shop")
	assert.Equal(t, ExitCodeFetch, ExitCode(res.err))
}

func TestMergeCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, true, false, false)
	hero := fix.Path("catalog", "brixies", "hero", "hero-banner.json")
	footer := fix.Path("catalog", "brixies", "footer", "footer-simple.json")
	target := filepath.Join(t.TempDir(), "merged.json")

	res := execute(newMergeCommand(), "", hero, footer, "-o", target)
	require.NoError(t, res.err)
	_, data := decodePayload(t, res.stdout)
	assert.Equal(t, float64(2), data["sections"])
	assert.Equal(t, float64(3), data["elements"])

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	doc, err := bricks.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSourceURL, doc.Provenance.SourceURL)

	res = execute(newMergeCommand(), "", hero, hero)
	assert.Equal(t, ExitCodeCollision, ExitCode(res.err))
	assert.Contains(t, res.err.Error(), "duplicate id")
}

func TestMergeCommandSkipsFailedInputs(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, true, false, false)
	hero := fix.Path("catalog", "brixies", "hero", "hero-banner.json")
	missing := fix.Path("catalog", "brixies", "pricing", "pricing-table.json")

	res := execute(newMergeCommand(), "", missing, hero)
	require.NoError(t, res.err)
	_, data := decodePayload(t, res.stdout)
	assert.Equal(t, float64(1), data["sections"])
	issues, _ := data["issues"].([]interface{})
	require.Len(t, issues, 1)
	issue := issues[0].(map[string]interface{})
	assert.Equal(t, "fetch", issue["kind"])
	assert.Equal(t, missing, issue["section"])
	assert.Contains(t, res.stderr, "! fetch: "+missing)

	res = execute(newMergeCommand(), "", missing)
	assert.Equal(t, ExitCodeFetch, ExitCode(res.err))
}

func TestIndexCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)
	target := filepath.Join(t.TempDir(), "metadata-index.json")

	res := execute(newIndexCommand(), "", fix.BaseDir(), "-o", target)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Index written to "+target)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	idx, err := catalog.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	entry, err := idx.Lookup("footer-simple")
	require.NoError(t, err)
	assert.Equal(t, "footer-02", entry.DefaultClass)
	assert.Equal(t, "/brixies/footer/footer-simple.json", entry.RelativePath)

	fix.WriteFile(t, filepath.Join("catalog", "brixies", "cta", "cta-banner.json"), []byte(testutil.DividerJSON))
	res = execute(newIndexCommand(), "", fix.BaseDir(), "-o", target, "-v")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1 added")
	assert.Contains(t, res.stdout, "+ brixies/cta/cta-banner")

	res = execute(newIndexCommand(), "", fix.BaseDir(), "-o", target, "-q")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	res = execute(newIndexCommand(), "", fix.BaseDir(), "--format", "md")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "| Framework | Category | Section |")

	res = execute(newIndexCommand(), "", fix.BaseDir(), "--format", "xml")
	assert.Equal(t, ExitCodeValidation, ExitCode(res.err))

	res = execute(newIndexCommand(), "", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ExitCodeFilesystem, ExitCode(res.err))
}

func TestValidateCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, false, false, false)
	valid := fix.Path("catalog", "brixies", "hero", "hero-banner.json")
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"content":[{"children":[]}]}`), 0o600))
	dangling := filepath.Join(dir, "dangling.json")
	require.NoError(t, os.WriteFile(dangling, []byte(`{"content":[{"id":"a","children":["zz"]}],"globalClasses":[]}`), 0o600))

	res := execute(newValidateCommand(), "", valid, dangling)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Validated 2 file(s)")
	assert.Contains(t, res.stdout, "  ~ ")

	res = execute(newValidateCommand(), "", valid, dangling, "--strict")
	assert.Equal(t, ExitCodeSchema, ExitCode(res.err))

	res = execute(newValidateCommand(), "", valid, invalid)
	assert.Equal(t, ExitCodeSchema, ExitCode(res.err))
	assert.Contains(t, res.stdout, invalid+":")
}

func TestVersionCommand(t *testing.T) {
	fix := testutil.NewFixture(t)
	setupOptions(t, fix, true, false, false)

	res := execute(newVersionCommand(), "")
	require.NoError(t, res.err)
	_, data := decodePayload(t, res.stdout)
	assert.Equal(t, "dev", data["version"])
}
