package ocr

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coi-quote/constants"
)

type call struct {
	name string
	args []string
}

// fakeRunner answers by binary name and records every call.
type fakeRunner struct {
	out   map[string]string
	fail  map[string]error
	calls []call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if err := f.fail[name]; err != nil {
		return nil, []byte("boom"), err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for _, p := range []string{"-1.png", "-2.png"} {
			if err := os.WriteFile(prefix+p, []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
	}
	return []byte(f.out[name]), nil, nil
}

const coiText = "CERTIFICATE OF LIABILITY INSURANCE\nGENERAL AGGREGATE   $2,000,000\nPOLICY EXP 12/31/2099\n"

func newTestExtractor(r Runner) *Extractor {
	return NewExtractor(Config{}, nil).WithRunner(r)
}

func TestExtractBytes_PlainText(t *testing.T) {
	r := &fakeRunner{}
	res, err := newTestExtractor(r).ExtractBytes(context.Background(), []byte(coiText))
	require.NoError(t, err)
	assert.Equal(t, constants.TEXT, res.SourceType)
	assert.Equal(t, "plain-text", res.Method)
	assert.Contains(t, res.Text, "GENERAL AGGREGATE $2,000,000")
	assert.Empty(t, r.calls)
}

func TestExtractBytes_Empty(t *testing.T) {
	_, err := newTestExtractor(&fakeRunner{}).ExtractBytes(context.Background(), nil)
	assert.Error(t, err)
}

func TestExtractBytes_PDFTextLayer(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"pdftotext": coiText + "\f"}}
	res, err := newTestExtractor(r).ExtractBytes(context.Background(), []byte("%PDF-1.7\n..."))
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 1, res.Pages)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "pdftotext", r.calls[0].name)
	assert.True(t, strings.HasSuffix(r.calls[0].args[len(r.calls[0].args)-2], ".pdf"))
}

func TestExtractBytes_ScannedPDFFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"pdftotext": "  \f",
		"tesseract": coiText,
	}}
	res, err := newTestExtractor(r).ExtractBytes(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "\f")
	assert.Contains(t, res.Warnings, "pdf text layer empty; used ocr")
}

func TestExtractBytes_OCRFailure(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{
		"pdftotext": errors.New("exit status 1"),
		"pdftoppm":  errors.New("exit status 1"),
	}}
	res, err := newTestExtractor(r).ExtractBytes(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Empty(t, res.Text)
}

func TestExtractBytes_Image(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"tesseract": coiText}}
	res, err := newTestExtractor(r).ExtractBytes(context.Background(), []byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "eng", res.Language)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := newTestExtractor(&fakeRunner{}).Extract(context.Background(), "policy.docx")
	assert.Error(t, err)
}

func TestMeanTSVConfidence(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tGENERAL\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tAGGREGATE\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t\n"
	assert.InDelta(t, 0.8, meanTSVConfidence(tsv), 1e-6)
	assert.Zero(t, meanTSVConfidence(""))
}

func TestNormalize(t *testing.T) {
	in := "GENERAL\tAGGREGATE    $2,000,000  \r\n-----\r\n\r\n\r\n\r\nEXP 12/31/2099"
	assert.Equal(t, "GENERAL AGGREGATE $2,000,000\n\nEXP 12/31/2099", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestHeuristicConfidence(t *testing.T) {
	assert.Greater(t, heuristicConfidence(coiText), heuristicConfidence("hello"))
	assert.LessOrEqual(t, heuristicConfidence(strings.Repeat(coiText, 10)), float32(1.0))
}
