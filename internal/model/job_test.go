package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawJobRecord_Get(t *testing.T) {
	t.Parallel()

	r := RawJobRecord{
		JobTitle: StrPtr("工程師"),
		Salary:   StrPtr("面議"),
	}

	assert.Equal(t, "工程師", *r.Get(FieldJobTitle))
	assert.Equal(t, "面議", *r.Get(FieldSalary))
	assert.Nil(t, r.Get(FieldAddress))
	assert.Nil(t, r.Get("unknown"))
}

func TestRawJobRecord_Missing(t *testing.T) {
	t.Parallel()

	full := RawJobRecord{}
	assert.Equal(t, RawFields, full.Missing())

	r := RawJobRecord{
		JobTitle:      StrPtr("a"),
		CompanyName:   StrPtr("b"),
		CompanyCat:    StrPtr("c"),
		Location:      StrPtr("台北市中山區"),
		Address:       StrPtr("d"),
		Salary:        StrPtr("e"),
		WorkingExp:    StrPtr("f"),
		Education:     StrPtr("g"),
		Degree:        StrPtr("h"),
		DriverLicense: StrPtr("i"),
	}
	assert.Equal(t, []string{FieldVehicles}, r.Missing())
}

func TestNormalizedJobRecord_ColumnOrder(t *testing.T) {
	t.Parallel()

	n := NormalizedJobRecord{
		Date:          "2024-05-01",
		JobTitle:      "title",
		CompanyName:   "name",
		CompanyCat:    "a,b",
		City:          "台北市",
		District:      "中山區",
		Address:       "addr",
		PayType:       PayMonthly,
		LowerLimit:    "30000",
		UpperLimit:    "50000",
		WorkingExp:    "0",
		Education:     "大學",
		Degree:        NA,
		DriverLicense: NA,
		Vehicles:      NA,
	}

	s := n.Strings()
	assert.Len(t, s, len(JobbankColumns))
	assert.Equal(t, "2024-05-01", s[0])
	assert.Equal(t, "台北市", s[4])
	assert.Equal(t, "monthly", s[7])
	assert.Equal(t, "30000", s[8])
	assert.Equal(t, NA, s[14])

	v := n.Values()
	assert.Len(t, v, len(JobbankColumns))
	assert.Equal(t, any("中山區"), v[5])
}

func TestNormalizedJobRecord_Amounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lower  string
		upper  string
		wantLo float64
		okLo   bool
		wantHi float64
		okHi   bool
	}{
		{"both numeric", "30000", "50000", 30000, true, 50000, true},
		{"negotiable", "40000", NA, 40000, true, 0, false},
		{"empty", "", " ", 0, false, 0, false},
		{"garbage", "abc", "1.5", 0, false, 1.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NormalizedJobRecord{LowerLimit: tt.lower, UpperLimit: tt.upper}
			lo, ok := n.LowerAmount()
			assert.Equal(t, tt.okLo, ok)
			assert.InDelta(t, tt.wantLo, lo, 0.0001)
			hi, ok := n.UpperAmount()
			assert.Equal(t, tt.okHi, ok)
			assert.InDelta(t, tt.wantHi, hi, 0.0001)
		})
	}
}

func TestPayType_Valid(t *testing.T) {
	t.Parallel()

	for _, p := range AllPayTypes() {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, PayType("").Valid())
	assert.False(t, PayType("hourly").Valid())
	assert.Equal(t, []PayType{PayNegotiable, PayMonthly, PayDaily, PayYear}, AllPayTypes())
}
