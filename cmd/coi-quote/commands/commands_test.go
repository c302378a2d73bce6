package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/coi-quote/internal/eligibility"
)

const certificate = `CERTIFICATE OF LIABILITY INSURANCE
COMMERCIAL GENERAL LIABILITY
GENERAL AGGREGATE $2,000,000
TOTAL ANNUAL PREMIUM $3,500.00
POLICY EFF 01/01/2099  POLICY EXP 12/31/2099`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RULES_FILE", filepath.Join(dir, "absent.yaml"))
	t.Setenv("DB_DRIVER", "sqlite")
	if os.Getenv("DB_URL") == "" {
		t.Setenv("DB_URL", "file:"+filepath.Join(dir, "quotes.db"))
	}
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeCert(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestSampleCommand(t *testing.T) {
	out, err := run(t, "", "sample")
	require.NoError(t, err)
	assert.Contains(t, out, "sample: aggregate $2,000,000, expires 01/01/2026, premium $3,500")
	assert.Contains(t, out, "NOT ELIGIBLE: Policy expires in -")
}

func TestEvaluateCommand_Flags(t *testing.T) {
	out, err := run(t, "", "evaluate", "--aggregate", "$2,000,000", "--expiration", "12/31/2099", "--premium", "3500")
	require.NoError(t, err)
	assert.Contains(t, out, "ELIGIBLE: our price $3,150 (save $350, 10%)")

	out, err = run(t, "", "evaluate", "--aggregate", "$5,000,000", "--expiration", "12/31/2099")
	require.NoError(t, err)
	assert.Contains(t, out, "NOT ELIGIBLE: General Aggregate $5,000,000 exceeds our maximum limit of $2,000,000")

	out, err = run(t, "", "evaluate")
	require.NoError(t, err)
	assert.Contains(t, out, "Unable to determine General Aggregate limit")

	_, err = run(t, "", "evaluate", "--aggregate", "lots")
	assert.Error(t, err)
}

func TestEvaluateCommand_ResultJSON(t *testing.T) {
	in := `{"general_aggregate": 1500000, "expiration_date": "12/31/2099", "premium": null, "extraction_success": true}`
	out, err := run(t, in, "--json", "evaluate", "--result", "-")
	require.NoError(t, err)

	var d eligibility.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.True(t, d.Eligible)
	assert.Equal(t, 3150.0, d.OurPrice)
	assert.NotEmpty(t, d.Warnings)

	_, err = run(t, `{"general_aggregate": "big"}`, "evaluate", "--result", "-")
	assert.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	p := writeCert(t, t.TempDir(), "acme.txt", certificate)

	out, err := run(t, "", "extract", p)
	require.NoError(t, err)
	assert.Contains(t, out, "general_aggregate: $2,000,000 [MATCHED general_aggregate_label]")
	assert.Contains(t, out, "expiration_date:   12/31/2099 [MATCHED exp_before_date]")
	assert.Contains(t, out, "premium:           $3,500 [MATCHED total_annual_premium_label]")
}

func TestQuoteSaveAndExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_URL", "file:"+filepath.Join(dir, "quotes.db"))
	p := writeCert(t, dir, "acme.txt", certificate)

	out, err := run(t, "", "quote", "--save", p)
	require.NoError(t, err)
	assert.Contains(t, out, "acme.txt: ELIGIBLE: our price $3,150 (save $350, 10%)")

	xlsx := filepath.Join(dir, "out.xlsx")
	out, err = run(t, "", "export", "--out", xlsx, "--eligible-only")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+xlsx)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Quotes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "acme.txt", rows[1][1])

	_, err = run(t, "", "export", "--from", "yesterday")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeCert(t, dir, "a.txt", certificate)
	writeCert(t, dir, "b.txt", strings.Replace(certificate, "$2,000,000", "$5,000,000", 1))
	writeCert(t, dir, "notes.docx", "ignored")

	out, err := run(t, "", "batch", "--workers", "2", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "scanned 3 files, processed 2: 1 eligible, 1 ineligible, 0 degraded, 0 failed")
	assert.Contains(t, out, filepath.Join(dir, "a.txt"))
}

func TestOCRCommand(t *testing.T) {
	p := writeCert(t, t.TempDir(), "acme.txt", "GENERAL   AGGREGATE\t$2,000,000\r\n")

	out, err := run(t, "", "ocr", p)
	require.NoError(t, err)
	assert.Equal(t, "GENERAL AGGREGATE $2,000,000\n", out)
}

func TestDBHealthCommand(t *testing.T) {
	out, err := run(t, "", "dbhealth")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK (sqlite)")
	assert.Contains(t, out, "quotes: 0 stored, 0 eligible")
}
