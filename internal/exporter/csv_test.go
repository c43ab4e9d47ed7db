package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

func sampleRecords() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{CorpCode: "00126380", Caption: "유동자산", Value: "68,548,442", Year: "2023", Unit: "백만원 KRW"},
		{CorpCode: "00126380", Caption: "자산총계", Value: "255,950,042", Year: "2023", Unit: "백만원 KRW"},
	}
}

func readCSV(t *testing.T, content []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(content, utf8BOM), "missing BOM")
	rows, err := csv.NewReader(bytes.NewReader(content[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tempDir := t.TempDir()
	writer := NewCSVWriter(tempDir)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content string)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"Name", "Age"},
				Records: [][]string{{"Kim", "25"}, {"Lee", "30"}},
			},
			validate: func(t *testing.T, content string) {
				lines := strings.Split(strings.TrimSpace(content), "\n")
				assert.Equal(t, []string{"Name,Age", "Kim,25", "Lee,30"}, lines)
			},
		},
		{
			name:     "quotes values containing commas",
			filePath: "quoted.csv",
			options: WriteOptions{
				Records: [][]string{{"유동자산", "68,548,442"}},
			},
			validate: func(t *testing.T, content string) {
				assert.Equal(t, "유동자산,\"68,548,442\"\n", content)
			},
		},
		{
			name:     "nested directory is created",
			filePath: filepath.Join("out", "nested", "file.csv"),
			options: WriteOptions{
				Headers: []string{"a"},
			},
			validate: func(t *testing.T, content string) {
				assert.Equal(t, "a\n", content)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))
			content, err := os.ReadFile(filepath.Join(tempDir, tt.filePath))
			require.NoError(t, err)
			tt.validate(t, string(content))
		})
	}
}

func TestCSVWriter_WriteAndAppendRecords(t *testing.T) {
	tempDir := t.TempDir()
	writer := NewCSVWriter(tempDir)
	records := sampleRecords()

	require.NoError(t, writer.WriteRecords("records.csv", records[:1]))
	require.NoError(t, writer.AppendRecords("records.csv", records[1:]))

	content, err := os.ReadFile(filepath.Join(tempDir, "records.csv"))
	require.NoError(t, err)

	rows := readCSV(t, content)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.RecordHeaders, rows[0])
	assert.Equal(t, records[0].Row(), rows[1])
	assert.Equal(t, records[1].Row(), rows[2])
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer := NewCSVWriter("/nonexistent-base")
	path := filepath.Join(t.TempDir(), "abs.csv")

	require.NoError(t, writer.WriteRecords(path, sampleRecords()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleRecords()))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"기업코드", "항목명", "값", "연도", "단위"}, rows[0])
	assert.Equal(t, []string{"00126380", "유동자산", "68,548,442", "2023", "백만원 KRW"}, rows[1])
}

func TestEncodeCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, nil))
	assert.Len(t, readCSV(t, buf.Bytes()), 1)
}
