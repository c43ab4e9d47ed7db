package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Context references shaped like the ones in DART filings.
const (
	SeparateContextCurrent  = "CFY2023eFY_ifrs-full_ConsolidatedAndSeparateFinancialStatementsAxis_SeparateMember"
	SeparateContextPrior    = "PFY2022eFY_ifrs-full_ConsolidatedAndSeparateFinancialStatementsAxis_SeparateMember"
	ConsolidatedContextCurr = "CFY2023eFY"
)

// SampleInstance is a small instance document covering kept, filtered and
// out-of-list facts.
const SampleInstance = `<?xml version="1.0" encoding="utf-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:ifrs-full="https://xbrl.ifrs.org/taxonomy/2021-03-24/ifrs-full"
  xmlns:dart="http://dart.fss.or.kr/dte/2021"
  xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <xbrli:unit id="KRW"><xbrli:measure>iso4217:KRW</xbrli:measure></xbrli:unit>
  <ifrs-full:Assets contextRef="` + SeparateContextCurrent + `" unitRef="KRW" decimals="-6">255950042000000</ifrs-full:Assets>
  <ifrs-full:CurrentAssets contextRef="` + SeparateContextCurrent + `" unitRef="KRW" decimals="-6">68548442000000</ifrs-full:CurrentAssets>
  <ifrs-full:CurrentAssets contextRef="` + SeparateContextPrior + `" unitRef="KRW" decimals="-6">59062658000000</ifrs-full:CurrentAssets>
  <ifrs-full:CurrentAssets contextRef="` + ConsolidatedContextCurr + `" unitRef="KRW" decimals="-6">195936557000000</ifrs-full:CurrentAssets>
  <ifrs-full:Inventories contextRef="` + SeparateContextCurrent + `" unitRef="KRW" decimals="-6" xsi:nil="true"/>
  <ifrs-full:Revenue contextRef="` + SeparateContextCurrent + `" unitRef="KRW" decimals="-6">170374090000000</ifrs-full:Revenue>
  <dart:ShortTermWithholdings contextRef="` + SeparateContextCurrent + `" unitRef="KRW" decimals="-3">1234567000</dart:ShortTermWithholdings>
</xbrli:xbrl>
`

// SampleLinkbase labels CurrentAssets and Assets in Korean and English.
const SampleLinkbase = `<?xml version="1.0" encoding="utf-8"?>
<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:labelLink xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link">
    <link:loc xlink:type="locator" xlink:href="https://xbrl.ifrs.org/taxonomy/2021-03-24/full_ifrs/full_ifrs-cor_2021-03-24.xsd#ifrs-full_CurrentAssets" xlink:label="ifrs-full_CurrentAssets"/>
    <link:loc xlink:type="locator" xlink:href="https://xbrl.ifrs.org/taxonomy/2021-03-24/full_ifrs/full_ifrs-cor_2021-03-24.xsd#ifrs-full_Assets" xlink:label="ifrs-full_Assets"/>
    <link:label xlink:type="resource" xlink:label="label_CurrentAssets" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="ko">유동자산</link:label>
    <link:label xlink:type="resource" xlink:label="label_CurrentAssets_en" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en">Current assets</link:label>
    <link:label xlink:type="resource" xlink:label="label_Assets" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="ko">자산총계</link:label>
    <link:labelArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/concept-label" xlink:from="ifrs-full_CurrentAssets" xlink:to="label_CurrentAssets"/>
    <link:labelArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/concept-label" xlink:from="ifrs-full_CurrentAssets" xlink:to="label_CurrentAssets_en"/>
    <link:labelArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/concept-label" xlink:from="ifrs-full_Assets" xlink:to="label_Assets"/>
  </link:labelLink>
</link:linkbase>
`

// WriteFiling creates root/dir and writes the given files into it.
// It returns the directory path.
func WriteFiling(t *testing.T, root, dir string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("create filing dir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(path, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return path
}

// WriteSampleFiling writes SampleInstance and SampleLinkbase for corpCode under root.
func WriteSampleFiling(t *testing.T, root, corpCode string) string {
	t.Helper()

	return WriteFiling(t, root, corpCode+"_20231231", map[string]string{
		"entity" + corpCode + "_2023-12-31.xbrl":       SampleInstance,
		"entity" + corpCode + "_2023-12-31_lab-ko.xml": SampleLinkbase,
	})
}
