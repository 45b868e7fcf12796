package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/jobbank-etl/internal/model"
)

// Salary text markers.
const (
	MarkerNegotiable  = "面議"
	MarkerMonthly     = "月薪"
	MarkerDaily       = "日薪"
	MarkerYear        = "年薪"
	MarkerTenThousand = "萬"
	MarkerCurrency    = "元"
	MarkerAndAbove    = "以上"

	rangeSep     = "~"
	thousandsSep = ","
)

// NegotiableLower is the lower bound recorded for negotiable salaries.
const NegotiableLower = "40000"

// boundRule scales a parsed bound. A zero unit copies the text verbatim.
type boundRule struct {
	lowerUnit float64
	upperUnit float64
}

type salaryRule struct {
	payType model.PayType
	marker  string
	bounds  boundRule
}

// salaryRules are checked in order; the first marker found wins.
var salaryRules = []salaryRule{
	{payType: model.PayNegotiable, marker: MarkerNegotiable},
	{payType: model.PayMonthly, marker: MarkerMonthly, bounds: boundRule{lowerUnit: 10000, upperUnit: 10000}},
	// Daily bounds use different units for lower and upper.
	{payType: model.PayDaily, marker: MarkerDaily, bounds: boundRule{lowerUnit: 1000, upperUnit: 10000}},
	{payType: model.PayYear, marker: MarkerYear},
}

var stripSalary = strings.NewReplacer(
	MarkerTenThousand, "",
	MarkerCurrency, "",
	MarkerAndAbove, "",
)

// parseSalary classifies salary text and extracts its bounds. An empty pay
// type means the text matched no rule. Nil bounds are missing.
func parseSalary(salary string) (model.PayType, *string, *string) {
	for _, rule := range salaryRules {
		if !strings.Contains(salary, rule.marker) {
			continue
		}
		if rule.payType == model.PayNegotiable {
			upper := model.NA
			lower := NegotiableLower
			return rule.payType, &lower, &upper
		}

		text := stripSalary.Replace(strings.ReplaceAll(salary, rule.marker, ""))
		lowText, highText, hasUpper := strings.Cut(text, rangeSep)

		var lower, upper *string
		if rule.bounds.lowerUnit == 0 {
			lower = &lowText
			if hasUpper {
				upper = &highText
			}
			return rule.payType, lower, upper
		}

		lower = scaleBound(lowText, rule.bounds.lowerUnit)
		if hasUpper {
			upper = scaleBound(highText, rule.bounds.upperUnit)
		}
		return rule.payType, lower, upper
	}
	return "", nil, nil
}

// scaleBound converts a bound to an absolute amount. Text with a thousands
// separator is first brought down to unit, then every value is multiplied by
// unit. Non-numeric text is missing.
func scaleBound(s string, unit float64) *string {
	s = strings.TrimSpace(s)
	separated := strings.Contains(s, thousandsSep)
	if separated {
		s = strings.ReplaceAll(s, thousandsSep, "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if separated {
		v /= unit
	}
	out := formatAmount(v * unit)
	return &out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
