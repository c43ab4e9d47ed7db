package xbrl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/filings"
	"github.com/junyeongccom/railway-dsdgen/internal/shared/testutil"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

func newTestParser(t *testing.T, root string) (*Parser, *testutil.BufferedSlogHandler) {
	logger, logs := testutil.NewTestLogger(t)
	locator := filings.NewDirectoryLocator(filings.Options{
		Root:          root,
		InstanceExt:   ".xbrl",
		LabelMarker:   "lab-ko.xml",
		AllowFallback: true,
	}, logger)
	return NewParser(locator, logger), logs
}

func TestParserParse(t *testing.T) {
	root := t.TempDir()
	testutil.WriteSampleFiling(t, root, "00126380")

	parser, _ := newTestParser(t, root)
	result, err := parser.Parse(context.Background(), "00126380")
	require.NoError(t, err)

	assert.Equal(t, 4, result.FactCount)
	assert.Equal(t, 2, result.LabelCount)
	assert.True(t, result.Filing.HasLabels())
	assert.Equal(t, []domain.CanonicalRecord{
		{CorpCode: "00126380", Caption: "유동자산", Value: "68,548,442", Year: "2023", Unit: "백만원 KRW"},
		{CorpCode: "00126380", Caption: "유동자산", Value: "59,062,658", Year: "2022", Unit: "백만원 KRW"},
		{CorpCode: "00126380", Caption: "자산총계", Value: "255,950,042", Year: "2023", Unit: "백만원 KRW"},
		{CorpCode: "00126380", Caption: "ShortTermWithholdings", Value: "1,234,567", Year: "2023", Unit: "천원 KRW"},
	}, result.Records)
}

func TestParserWithoutLabels(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiling(t, root, "00126380_20231231", map[string]string{
		"entity.xbrl": testutil.SampleInstance,
	})

	parser, logs := newTestParser(t, root)
	result, err := parser.Parse(context.Background(), "00126380")
	require.NoError(t, err)

	require.Len(t, result.Records, 4)
	assert.Equal(t, "CurrentAssets", result.Records[0].Caption)
	assert.Equal(t, 0, result.LabelCount)
	assert.True(t, logs.ContainsMessage("no label linkbase found, captions fall back to tag names"))
}

func TestParserWithAllowList(t *testing.T) {
	root := t.TempDir()
	testutil.WriteSampleFiling(t, root, "00126380")

	logger, _ := testutil.NewTestLogger(t)
	locator := filings.NewDirectoryLocator(filings.Options{
		Root:        root,
		InstanceExt: ".xbrl",
		LabelMarker: "lab-ko.xml",
	}, logger)
	parser := NewParser(locator, logger, WithAllowList([]QName{ParseQName("ifrs-full:Assets")}))

	result, err := parser.Parse(context.Background(), "00126380")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "자산총계", result.Records[0].Caption)
	assert.Equal(t, 1, result.FactCount)
}

func TestParserNoFacts(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiling(t, root, "00126380_20231231", map[string]string{
		"entity.xbrl": `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"/>`,
	})

	parser, _ := newTestParser(t, root)
	result, err := parser.Parse(context.Background(), "00126380")
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.FactCount)
}

func TestParserLogsNormalizationFallback(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiling(t, root, "00126380_20231231", map[string]string{
		"entity.xbrl": `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:ifrs-full="https://xbrl.ifrs.org/taxonomy/2021-03-24/ifrs-full">
  <ifrs-full:CurrentAssets contextRef="` + testutil.SeparateContextCurrent + `" unitRef="KRW" decimals="-6">n/a</ifrs-full:CurrentAssets>
</xbrli:xbrl>`,
	})

	parser, logs := newTestParser(t, root)
	result, err := parser.Parse(context.Background(), "00126380")
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "0", result.Records[0].Value)
	assert.Equal(t, "원 KRW", result.Records[0].Unit)
	assert.True(t, logs.ContainsMessage("normalization fell back to defaults"))
	assert.True(t, logs.ContainsAttr("error_type", string(apperrors.ErrTypeNormalization)))
	assert.True(t, logs.ContainsAttr("component", "xbrl_parser"))
}

func TestParserErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		parser, logs := newTestParser(t, t.TempDir()+"/missing")
		_, err := parser.Parse(context.Background(), "00126380")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		assert.True(t, logs.ContainsAttr("error_type", string(apperrors.ErrTypeNotFound)))
	})

	t.Run("malformed instance", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFiling(t, root, "00126380_20231231", map[string]string{
			"entity.xbrl": `<xbrli:xbrl><ifrs-full:Assets>`,
		})
		parser, _ := newTestParser(t, root)
		_, err := parser.Parse(context.Background(), "00126380")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformedInput))
	})
}
