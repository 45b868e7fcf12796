// Package extract turns a parsed listing page into raw job records.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/fetcher"
	"github.com/sells-group/jobbank-etl/internal/model"
)

// Stats counts what one Extract call saw.
type Stats struct {
	Entries     int            `json:"entries"`
	Skipped     int            `json:"skipped"`
	FieldMisses map[string]int `json:"field_misses,omitempty"`
}

// Add folds o into s.
func (s *Stats) Add(o Stats) {
	s.Entries += o.Entries
	s.Skipped += o.Skipped
	for k, v := range o.FieldMisses {
		if s.FieldMisses == nil {
			s.FieldMisses = make(map[string]int)
		}
		s.FieldMisses[k] += v
	}
}

// Result holds the records of one page and the link to the next one.
// An empty NextURL means the listing has no further pages.
type Result struct {
	Records []model.RawJobRecord
	NextURL string
	Stats   Stats
}

// Extractor reads job entries from listing pages.
type Extractor struct {
	profile *Profile
}

// New creates an Extractor for the given profile. A nil profile uses DefaultProfile.
func New(p *Profile) *Extractor {
	if p == nil {
		p = DefaultProfile()
	}
	return &Extractor{profile: p}
}

// Extract returns the allowlisted job records of page in document order.
func (e *Extractor) Extract(page *fetcher.Page) Result {
	var res Result
	if page == nil || page.Doc == nil {
		return res
	}

	sel := e.profile.Selectors
	page.Doc.Find(sel.Entry).Each(func(_ int, item *goquery.Selection) {
		res.Stats.Entries++

		location := attr(item, sel.Location, "aria-label")
		if location == nil || !e.profile.Allowed(*location) {
			res.Stats.Skipped++
			return
		}

		rec := e.record(item, location)
		for _, f := range rec.Missing() {
			if res.Stats.FieldMisses == nil {
				res.Stats.FieldMisses = make(map[string]int)
			}
			res.Stats.FieldMisses[f]++
		}
		res.Records = append(res.Records, rec)
	})

	res.NextURL = e.nextURL(page)
	return res
}

func (e *Extractor) record(item *goquery.Selection, location *string) model.RawJobRecord {
	sel := e.profile.Selectors
	company := parseCompany(attr(item, sel.CompanyInfo, "title"), e.profile.Company)

	return model.RawJobRecord{
		JobTitle:      attr(item, sel.JobTitle, "title"),
		CompanyName:   company.Name,
		CompanyCat:    company.Category,
		Location:      location,
		Address:       company.Address,
		Salary:        attr(item, sel.Salary, "aria-label"),
		WorkingExp:    attr(item, sel.WorkingExp, "aria-label"),
		Education:     attr(item, sel.Education, "aria-label"),
		Degree:        text(item, sel.Degree),
		DriverLicense: text(item, sel.DriverLicense),
		Vehicles:      text(item, sel.Vehicles),
	}
}

func (e *Extractor) nextURL(page *fetcher.Page) string {
	link := page.Doc.Find(e.profile.Selectors.NextPage).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		zap.L().Debug("extract: unparsable next-page link", zap.String("href", href), zap.Error(err))
		return ""
	}
	if base, err := url.Parse(page.URL); err == nil {
		ref = base.ResolveReference(ref)
	}

	if e.profile.PageSizeParam != "" {
		q := ref.Query()
		q.Set(e.profile.PageSizeParam, e.profile.PageSize)
		ref.RawQuery = q.Encode()
	}
	return ref.String()
}

// attr returns the named attribute of the first node matching selector.
func attr(item *goquery.Selection, selector, name string) *string {
	if selector == "" {
		return nil
	}
	v, ok := item.Find(selector).First().Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// text returns the text content of the first node matching selector.
func text(item *goquery.Selection, selector string) *string {
	if selector == "" {
		return nil
	}
	node := item.Find(selector).First()
	if node.Length() == 0 {
		return nil
	}
	v := node.Text()
	return &v
}
