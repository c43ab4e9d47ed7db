package xbrl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals string
		want     string
	}{
		{"millions", "68548442000000", "-6", "68,548,442"},
		{"thousands", "1234567000", "-3", "1,234,567"},
		{"negative truncates toward zero", "-1234567890", "-3", "-1,234,567"},
		{"scaled below one", "999", "-6", "0"},
		{"exponent notation", "1e6", "-3", "1,000"},
		{"zero decimals", "12", "0", "12"},
		{"fixed digits", "1234.5", "2", "1,234.50"},
		{"half away from zero", "1234.565", "2", "1,234.57"},
		{"negative fixed", "-1234.5", "1", "-1,234.5"},
		{"negative rounds away from zero", "-0.5", "0", "-1"},
		{"no decimals truncates", "1234567.89", "", "1,234,567"},
		{"unparseable decimals", "1234567.89", "INF", "1,234,567"},
		{"beyond int64", "123456789012345678901234", "", "123,456,789,012,345,678,901,234"},
		{"beyond int64 negative", "-123456789012345678901234", "-3", "-123,456,789,012,345,678,901"},
		{"not a number", "abc", "-6", "0"},
		{"fraction rejected", "1/2", "", "0"},
		{"empty", "", "-3", "0"},
		{"grouping separator rejected", "1,234", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.raw, tt.decimals))
		})
	}
}

func TestUnitLabel(t *testing.T) {
	tests := []struct {
		decimals string
		unit     string
		want     string
	}{
		{"-3", "KRW", "천원 KRW"},
		{"-4", "KRW", "만원 KRW"},
		{"-6", "KRW", "백만원 KRW"},
		{"-8", "KRW", "억원 KRW"},
		{"-2", "KRW", "원 KRW"},
		{"0", "KRW", "원 KRW"},
		{"2", "USD", "원 USD"},
		{"", "KRW", "원 KRW"},
		{"INF", "KRW", "원 KRW"},
		{"-6", "", "원"},
		{"", "", "원"},
	}

	for _, tt := range tests {
		t.Run(tt.decimals+"/"+tt.unit, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitLabel(tt.decimals, tt.unit))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		contextRef string
		want       string
	}{
		{"CFY2023eFY_ifrs-full_ConsolidatedAndSeparateFinancialStatementsAxis_SeparateMember", "2023"},
		{"PFY2022eFY_SeparateMember", "2022"},
		{"BPFY2021eFY_SeparateMember", "2021"},
		{"FY2020", "2020"},
		{"2019Q3_SeparateMember", "2019"},
		{"Instant_20231231_SeparateMember", "2023"},
		{"SeparateMember", domain.YearUnknown},
		{"", domain.YearUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.contextRef, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYear(tt.contextRef))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize(domain.RawFact{
		Value:      "68548442000000",
		ContextRef: "CFY2023eFY_SeparateMember",
		UnitRef:    "KRW",
		Decimals:   "-6",
	})
	assert.Equal(t, Normalized{Value: "68,548,442", Unit: "백만원 KRW", Year: "2023"}, n)

	assert.True(t, Normalize(domain.RawFact{Value: "n/a", Decimals: "-6"}).Recovered)
	assert.True(t, Normalize(domain.RawFact{Value: "10", Decimals: "INF"}).Recovered)
	assert.False(t, Normalize(domain.RawFact{Value: "10"}).Recovered)

	bad := Normalize(domain.RawFact{
		Value:      "abc",
		ContextRef: "CFY2023eFY_SeparateMember",
		UnitRef:    "KRW",
		Decimals:   "-6",
	})
	assert.Equal(t, Normalized{Value: "0", Unit: "원 KRW", Year: "2023", Recovered: true}, bad)
}
