package xbrl

import "strings"

// QName is a prefixed element name as it appears in an instance document.
type QName struct {
	Prefix string
	Local  string
}

// String returns the prefixed form, e.g. "ifrs-full:Assets".
func (q QName) String() string {
	return q.Prefix + ":" + q.Local
}

// ParseQName splits "prefix:local". A name without a colon has an empty prefix.
func ParseQName(s string) QName {
	prefix, local := splitName(strings.TrimSpace(s))
	return QName{Prefix: prefix, Local: local}
}

const (
	PrefixIFRS = "ifrs-full"
	PrefixDART = "dart"
)

func ifrs(local string) QName { return QName{Prefix: PrefixIFRS, Local: local} }
func dart(local string) QName { return QName{Prefix: PrefixDART, Local: local} }

// balanceSheetTags lists the statement of financial position elements
// that are extracted. Order here is the order of extracted facts.
var balanceSheetTags = []QName{
	// current assets
	ifrs("CurrentAssets"),
	ifrs("CashAndCashEquivalents"),
	ifrs("ShorttermDepositsNotClassifiedAsCashEquivalents"),
	ifrs("CurrentTradeReceivables"),
	dart("ShortTermOtherReceivablesNet"),
	ifrs("CurrentPrepaidExpenses"),
	ifrs("Inventories"),
	ifrs("OtherCurrentAssets"),

	// non-current assets
	ifrs("NoncurrentAssets"),
	ifrs("NoncurrentFinancialAssetsMeasuredAtFairValueThroughOtherComprehensiveIncome"),
	ifrs("NoncurrentFinancialAssetsAtFairValueThroughProfitOrLoss"),
	ifrs("InvestmentsInSubsidiariesJointVenturesAndAssociates"),
	ifrs("NoncurrentRecognisedAssetsDefinedBenefitPlan"),
	ifrs("DeferredTaxAssets"),
	ifrs("OtherNoncurrentAssets"),
	ifrs("Assets"),

	// current liabilities
	ifrs("CurrentLiabilities"),
	ifrs("TradeAndOtherCurrentPayablesToTradeSuppliers"),
	ifrs("OtherCurrentPayables"),
	ifrs("CurrentAdvances"),
	dart("ShortTermWithholdings"),
	ifrs("AccrualsClassifiedAsCurrent"),
	ifrs("CurrentTaxLiabilities"),
	ifrs("CurrentPortionOfLongtermBorrowings"),
	ifrs("CurrentProvisions"),
	ifrs("OtherCurrentLiabilities"),

	// non-current liabilities
	ifrs("NoncurrentLiabilities"),
	ifrs("NoncurrentPortionOfNoncurrentBondsIssued"),
	ifrs("NoncurrentPortionOfNoncurrentLoansReceived"),
	ifrs("OtherNoncurrentPayables"),
	ifrs("NoncurrentProvisions"),
	ifrs("OtherNoncurrentLiabilities"),
	ifrs("Liabilities"),

	// equity
	ifrs("IssuedCapital"),
	dart("IssuedCapitalOfPreferredStock"),
	dart("IssuedCapitalOfCommonStock"),
	ifrs("SharePremium"),
	ifrs("RetainedEarnings"),
	dart("ElementsOfOtherStockholdersEquity"),
	ifrs("EquityAndLiabilities"),
}

// AllowedTags returns a copy of the extraction allow-list.
func AllowedTags() []QName {
	out := make([]QName, len(balanceSheetTags))
	copy(out, balanceSheetTags)
	return out
}

// IsAllowed reports whether name is on the allow-list.
func IsAllowed(name QName) bool {
	for _, q := range balanceSheetTags {
		if q == name {
			return true
		}
	}
	return false
}
