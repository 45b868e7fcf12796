// Package normalize turns raw scraped job records into typed jobbank rows.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/sells-group/jobbank-etl/internal/extract"
	"github.com/sells-group/jobbank-etl/internal/model"
)

// DateLayout is the rendering of the crawl date column.
const DateLayout = "2006-01-02"

var (
	noExperience   = regexp.MustCompile(`經驗不拘|半|無工作經驗可`)
	experienceTail = regexp.MustCompile(`年工作經驗以(上|下)`)
)

// Stats counts rows through a Normalize call.
type Stats struct {
	RowsIn      int                   `json:"rows_in"`
	RowsOut     int                   `json:"rows_out"`
	RowsDropped int                   `json:"rows_dropped"`
	PayTypes    map[model.PayType]int `json:"pay_types,omitempty"`
}

// row is the working table row between stages.
type row struct {
	date, jobTitle, companyName, companyCat   string
	location, address, salary, workingExp     string
	education, degree, driverLicense, vehicle string

	payType      model.PayType
	lower, upper *string
}

// Normalize runs the normalization stages over records and returns the
// surviving rows in input order. Rows whose salary matches no pay type are
// dropped and only counted. The output depends only on its arguments.
func Normalize(records model.RawRecordSet, crawlDate time.Time) ([]model.NormalizedJobRecord, Stats) {
	stats := Stats{RowsIn: len(records), PayTypes: make(map[model.PayType]int)}
	date := crawlDate.Format(DateLayout)

	out := make([]model.NormalizedJobRecord, 0, len(records))
	for _, rec := range records {
		r := materialize(rec, date)
		r.trimRight()
		r.companyCat = strings.ReplaceAll(r.companyCat, " ", ",")

		r.payType, r.lower, r.upper = parseSalary(r.salary)
		if !r.payType.Valid() {
			stats.RowsDropped++
			continue
		}

		out = append(out, r.finish())
		stats.PayTypes[r.payType]++
	}
	stats.RowsOut = len(out)
	return out, stats
}

func materialize(rec model.RawJobRecord, date string) row {
	return row{
		date:          date,
		jobTitle:      orNA(rec.JobTitle),
		companyName:   orNA(rec.CompanyName),
		companyCat:    orNA(rec.CompanyCat),
		location:      orNA(rec.Location),
		address:       orNA(rec.Address),
		salary:        orNA(rec.Salary),
		workingExp:    orNA(rec.WorkingExp),
		education:     orNA(rec.Education),
		degree:        orNA(rec.Degree),
		driverLicense: orNA(rec.DriverLicense),
		vehicle:       orNA(rec.Vehicles),
	}
}

func (r *row) trimRight() {
	for _, p := range []*string{
		&r.date, &r.jobTitle, &r.companyName, &r.companyCat,
		&r.location, &r.address, &r.salary, &r.workingExp,
		&r.education, &r.degree, &r.driverLicense, &r.vehicle,
	} {
		*p = strings.TrimRightFunc(*p, unicode.IsSpace)
	}
}

// finish splits the location, normalizes experience, and drops the source columns.
func (r *row) finish() model.NormalizedJobRecord {
	city, district := SplitLocation(r.location)
	return model.NormalizedJobRecord{
		Date:          r.date,
		JobTitle:      r.jobTitle,
		CompanyName:   r.companyName,
		CompanyCat:    r.companyCat,
		City:          city,
		District:      district,
		Address:       r.address,
		PayType:       r.payType,
		LowerLimit:    orNA(r.lower),
		UpperLimit:    orNA(r.upper),
		WorkingExp:    Experience(r.workingExp),
		Education:     r.education,
		Degree:        r.degree,
		DriverLicense: r.driverLicense,
		Vehicles:      r.vehicle,
	}
}

// SplitLocation returns the city prefix of location and the remainder.
func SplitLocation(location string) (city, district string) {
	runes := []rune(location)
	if len(runes) <= extract.CityPrefixLen {
		return location, ""
	}
	return string(runes[:extract.CityPrefixLen]), string(runes[extract.CityPrefixLen:])
}

// Experience rewrites a working-experience label to its minimum years.
// "No requirement" labels become "0".
func Experience(s string) string {
	s = noExperience.ReplaceAllString(s, "0")
	return experienceTail.ReplaceAllString(s, "")
}

func orNA(s *string) string {
	if s == nil {
		return model.NA
	}
	return *s
}
