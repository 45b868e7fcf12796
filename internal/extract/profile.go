package extract

import (
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Selectors locates job-entry nodes and their fields in a listing page.
type Selectors struct {
	Entry         string `yaml:"entry"`
	Location      string `yaml:"location"`
	JobTitle      string `yaml:"job_title"`
	CompanyInfo   string `yaml:"company_info"`
	Salary        string `yaml:"salary"`
	WorkingExp    string `yaml:"working_exp"`
	Education     string `yaml:"education"`
	Degree        string `yaml:"degree"`
	DriverLicense string `yaml:"driver_license"`
	Vehicles      string `yaml:"vehicles"`
	NextPage      string `yaml:"next_page"`
}

// CompanyMarkers delimit the sections of the combined company label.
type CompanyMarkers struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Address  string `yaml:"address"`
}

// Profile describes the listing markup of one site.
type Profile struct {
	Selectors     Selectors      `yaml:"selectors"`
	Company       CompanyMarkers `yaml:"company"`
	CityAllowlist []string       `yaml:"city_allowlist"`
	// PageSizeParam and PageSize are forced onto every next-page URL.
	PageSizeParam string `yaml:"page_size_param"`
	PageSize      string `yaml:"page_size"`

	cities map[string]bool
}

// TaiwanCities are the administrative regions accepted by default.
var TaiwanCities = []string{
	"台北市", "新北市", "基隆市", "桃園市", "新竹市", "新竹縣", "苗栗縣", "台中市",
	"南投縣", "彰化縣", "雲林縣", "嘉義縣", "台南市", "高雄市", "屏東縣", "宜蘭縣",
	"花蓮縣", "台東縣", "澎湖縣", "金門縣", "連江縣",
}

// CityPrefixLen is the number of runes of a location that name its city.
const CityPrefixLen = 3

// DefaultProfile returns the 1111.com.tw search listing profile.
func DefaultProfile() *Profile {
	p := &Profile{
		Selectors: Selectors{
			Entry:         "div.item__job",
			Location:      "i.item__job-prop-item.item__job-prop-workcity",
			JobTitle:      "a.item__job-info--link.item__job-position0--link",
			CompanyInfo:   "a.item__job-info--link.item__job-organ--link",
			Salary:        "i.item__job-prop-item.item__job-prop-salary",
			WorkingExp:    "i.item__job-prop-item.item__job-prop-experience",
			Education:     "i.item__job-prop-item.item__job-prop-grade",
			Degree:        `span[data-e="相關科系"]`,
			DriverLicense: `span[data-e="駕照"]`,
			Vehicles:      `span[data-b=" 自備"]`,
			NextPage:      "div.srh-footer__content-item.srh-footer__content-nextpage a",
		},
		Company: CompanyMarkers{
			Name:     "公司名稱",
			Category: "行業類別",
			Address:  "公司住址",
		},
		CityAllowlist: append([]string(nil), TaiwanCities...),
		PageSizeParam: "ps",
		PageSize:      "100",
	}
	p.index()
	return p
}

// LoadProfile reads a YAML profile. Fields the file leaves empty keep their
// default values.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read profile %s", path)
	}

	var override Profile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "extract: parse profile %s", path)
	}

	p := DefaultProfile()
	p.merge(override)
	p.index()
	return p, nil
}

func (p *Profile) merge(o Profile) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Selectors.Entry, o.Selectors.Entry)
	set(&p.Selectors.Location, o.Selectors.Location)
	set(&p.Selectors.JobTitle, o.Selectors.JobTitle)
	set(&p.Selectors.CompanyInfo, o.Selectors.CompanyInfo)
	set(&p.Selectors.Salary, o.Selectors.Salary)
	set(&p.Selectors.WorkingExp, o.Selectors.WorkingExp)
	set(&p.Selectors.Education, o.Selectors.Education)
	set(&p.Selectors.Degree, o.Selectors.Degree)
	set(&p.Selectors.DriverLicense, o.Selectors.DriverLicense)
	set(&p.Selectors.Vehicles, o.Selectors.Vehicles)
	set(&p.Selectors.NextPage, o.Selectors.NextPage)
	set(&p.Company.Name, o.Company.Name)
	set(&p.Company.Category, o.Company.Category)
	set(&p.Company.Address, o.Company.Address)
	set(&p.PageSizeParam, o.PageSizeParam)
	set(&p.PageSize, o.PageSize)
	if len(o.CityAllowlist) > 0 {
		p.CityAllowlist = o.CityAllowlist
	}
}

func (p *Profile) index() {
	p.cities = make(map[string]bool, len(p.CityAllowlist))
	for _, c := range p.CityAllowlist {
		p.cities[norm.NFC.String(c)] = true
	}
}

// Allowed reports whether the location's city prefix is in the allowlist.
// The comparison is done in NFC, so a compatibility ideograph such as
// U+F963 matches 北. The location itself is not rewritten.
func (p *Profile) Allowed(location string) bool {
	if p.cities == nil {
		p.index()
	}
	location = norm.NFC.String(location)
	if utf8.RuneCountInString(location) < CityPrefixLen {
		return false
	}
	return p.cities[string([]rune(location)[:CityPrefixLen])]
}
