package models

// FinancialStatement is one fiscal year of reported annual figures.
// CapitalExpenditures is always a non-negative magnitude.
type FinancialStatement struct {
	Year                   int     `json:"year" yaml:"year"`
	Revenue                float64 `json:"revenue" yaml:"revenue"`
	CostOfRevenue          float64 `json:"costOfRevenue" yaml:"costOfRevenue"`
	GrossProfit            float64 `json:"grossProfit" yaml:"grossProfit"`
	OperatingExpenses      float64 `json:"operatingExpenses" yaml:"operatingExpenses"`
	OperatingIncome        float64 `json:"operatingIncome" yaml:"operatingIncome"` // EBIT
	InterestExpense        float64 `json:"interestExpense" yaml:"interestExpense"`
	IncomeBeforeTax        float64 `json:"incomeBeforeTax" yaml:"incomeBeforeTax"`
	IncomeTaxExpense       float64 `json:"incomeTaxExpense" yaml:"incomeTaxExpense"`
	NetIncome              float64 `json:"netIncome" yaml:"netIncome"`
	Depreciation           float64 `json:"depreciation" yaml:"depreciation"`
	CapitalExpenditures    float64 `json:"capitalExpenditures" yaml:"capitalExpenditures"`
	ChangeInWorkingCapital float64 `json:"changeInWorkingCapital" yaml:"changeInWorkingCapital"`
	TotalDebt              float64 `json:"totalDebt" yaml:"totalDebt"`
	TotalEquity            float64 `json:"totalEquity" yaml:"totalEquity"`
	SharesOutstanding      float64 `json:"sharesOutstanding" yaml:"sharesOutstanding"` // Diluted
}

// Company is the market snapshot plus history a valuation is run against.
// HistoricalFinancials is ordered oldest to newest.
type Company struct {
	Ticker               string               `json:"ticker" yaml:"ticker"`
	Name                 string               `json:"name,omitempty" yaml:"name"`
	Sector               string               `json:"sector,omitempty" yaml:"sector"`
	Industry             string               `json:"industry,omitempty" yaml:"industry"`
	CurrentPrice         float64              `json:"currentPrice" yaml:"currentPrice"`
	MarketCap            float64              `json:"marketCap,omitempty" yaml:"marketCap"`
	Beta                 float64              `json:"beta,omitempty" yaml:"beta"`
	SharesOutstanding    float64              `json:"sharesOutstanding" yaml:"sharesOutstanding"`
	TotalDebt            float64              `json:"totalDebt" yaml:"totalDebt"`
	Cash                 float64              `json:"cash" yaml:"cash"`
	HistoricalFinancials []FinancialStatement `json:"historicalFinancials" yaml:"historicalFinancials"`
}

// BaseYear returns the most recent statement. ok is false when there is no history.
func (c Company) BaseYear() (FinancialStatement, bool) {
	if len(c.HistoricalFinancials) == 0 {
		return FinancialStatement{}, false
	}
	return c.HistoricalFinancials[len(c.HistoricalFinancials)-1], true
}

// NetDebt is total debt less cash.
func (c Company) NetDebt() float64 {
	return c.TotalDebt - c.Cash
}
