// Package model defines the raw and normalized job-posting records that flow
// through the crawl, normalize, and load stages.
package model

import (
	"strconv"
	"strings"
)

// NA is the canonical missing-value placeholder in the normalized table.
const NA = "N/A"

// Field names of a raw job record, in extraction order.
const (
	FieldJobTitle      = "job_title"
	FieldCompanyName   = "company_name"
	FieldCompanyCat    = "company_cat"
	FieldLocation      = "location"
	FieldAddress       = "address"
	FieldSalary        = "salary"
	FieldWorkingExp    = "working_exp"
	FieldEducation     = "education"
	FieldDegree        = "degree"
	FieldDriverLicense = "driver_license"
	FieldVehicles      = "vehicles"
)

// RawFields lists the raw record fields in extraction order.
var RawFields = []string{
	FieldJobTitle, FieldCompanyName, FieldCompanyCat, FieldLocation,
	FieldAddress, FieldSalary, FieldWorkingExp, FieldEducation,
	FieldDegree, FieldDriverLicense, FieldVehicles,
}

// RawJobRecord is one listing entry scraped from a page. A nil field means the
// markup for that field was absent.
type RawJobRecord struct {
	JobTitle      *string `json:"job_title"`
	CompanyName   *string `json:"company_name"`
	CompanyCat    *string `json:"company_cat"`
	Location      *string `json:"location"`
	Address       *string `json:"address"`
	Salary        *string `json:"salary"`
	WorkingExp    *string `json:"working_exp"`
	Education     *string `json:"education"`
	Degree        *string `json:"degree"`
	DriverLicense *string `json:"driver_license"`
	Vehicles      *string `json:"vehicles"`
}

// Get returns the named field value, or nil when the field is missing or unknown.
func (r RawJobRecord) Get(field string) *string {
	switch field {
	case FieldJobTitle:
		return r.JobTitle
	case FieldCompanyName:
		return r.CompanyName
	case FieldCompanyCat:
		return r.CompanyCat
	case FieldLocation:
		return r.Location
	case FieldAddress:
		return r.Address
	case FieldSalary:
		return r.Salary
	case FieldWorkingExp:
		return r.WorkingExp
	case FieldEducation:
		return r.Education
	case FieldDegree:
		return r.Degree
	case FieldDriverLicense:
		return r.DriverLicense
	case FieldVehicles:
		return r.Vehicles
	default:
		return nil
	}
}

// Missing returns the names of nil fields in extraction order.
func (r RawJobRecord) Missing() []string {
	var out []string
	for _, f := range RawFields {
		if r.Get(f) == nil {
			out = append(out, f)
		}
	}
	return out
}

// RawRecordSet is the ordered, append-only accumulation of a crawl.
type RawRecordSet []RawJobRecord

// JobbankColumns is the column order of the jobbank table.
var JobbankColumns = []string{
	"date",
	"job_title",
	"company_name",
	"company_cat",
	"city",
	"district",
	"address",
	"pay_type",
	"lower_limit",
	"upper_limit",
	"working_exp",
	"education",
	"degree",
	"driver_license",
	"vehicles",
}

// NormalizedJobRecord is a typed jobbank row. Every field holds either a value
// or NA; PayType is always one of the four known pay types.
type NormalizedJobRecord struct {
	Date          string  `json:"date"`
	JobTitle      string  `json:"job_title"`
	CompanyName   string  `json:"company_name"`
	CompanyCat    string  `json:"company_cat"`
	City          string  `json:"city"`
	District      string  `json:"district"`
	Address       string  `json:"address"`
	PayType       PayType `json:"pay_type"`
	LowerLimit    string  `json:"lower_limit"`
	UpperLimit    string  `json:"upper_limit"`
	WorkingExp    string  `json:"working_exp"`
	Education     string  `json:"education"`
	Degree        string  `json:"degree"`
	DriverLicense string  `json:"driver_license"`
	Vehicles      string  `json:"vehicles"`
}

// Strings returns the row in JobbankColumns order.
func (n NormalizedJobRecord) Strings() []string {
	return []string{
		n.Date,
		n.JobTitle,
		n.CompanyName,
		n.CompanyCat,
		n.City,
		n.District,
		n.Address,
		string(n.PayType),
		n.LowerLimit,
		n.UpperLimit,
		n.WorkingExp,
		n.Education,
		n.Degree,
		n.DriverLicense,
		n.Vehicles,
	}
}

// Values returns the row in JobbankColumns order for bulk copy.
func (n NormalizedJobRecord) Values() []any {
	s := n.Strings()
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// LowerAmount parses LowerLimit as a number.
func (n NormalizedJobRecord) LowerAmount() (float64, bool) {
	return parseAmount(n.LowerLimit)
}

// UpperAmount parses UpperLimit as a number.
func (n NormalizedJobRecord) UpperAmount() (float64, bool) {
	return parseAmount(n.UpperLimit)
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == NA {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
