package filter

import (
	"testing"
	"time"

	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func day(d int) time.Time {
	return time.Date(2025, time.May, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []domain.Shift {
	return []domain.Shift{
		{ID: 1, Date: day(1), OrganizationName: "Альфа", PromoterName: "Иванов", PaymentType: domain.PaymentCash, PaidByOrganization: true},
		{ID: 2, Date: day(2), OrganizationName: "Бета", PromoterName: "Петров", PaymentType: domain.PaymentCashless, PaidToWorker: true},
		{ID: 3, Date: day(3), OrganizationName: "Альфа", PromoterName: "Петров", PaymentType: domain.PaymentCashless, PaidKVV: true, PaidKMS: true},
		{ID: 4, Date: day(4), OrganizationName: "Гамма", PromoterName: "Сидоров", PaymentType: domain.PaymentCash, PaidKMS: true},
		{ID: 5, Date: day(5), OrganizationName: "Бета", PromoterName: "Иванов", PaymentType: domain.PaymentCash},
	}
}

func ids(shifts []domain.Shift) []int64 {
	out := make([]int64, len(shifts))
	for i, s := range shifts {
		out[i] = s.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.FilterState
		want   []int64
	}{
		{"empty filter keeps everything", domain.FilterState{}, []int64{1, 2, 3, 4, 5}},
		{"tri-state true", domain.FilterState{PaidKMS: boolPtr(true)}, []int64{3, 4}},
		{"tri-state false", domain.FilterState{PaidKMS: boolPtr(false)}, []int64{1, 2, 5}},
		{"paid by organization", domain.FilterState{PaidByOrganization: boolPtr(true)}, []int64{1}},
		{"paid to worker false", domain.FilterState{PaidToWorker: boolPtr(false)}, []int64{1, 3, 4, 5}},
		{"organizations are disjunctive", domain.FilterState{Organizations: []string{"Альфа", "Гамма"}}, []int64{1, 3, 4}},
		{"promoters", domain.FilterState{Promoters: []string{"Иванов"}}, []int64{1, 5}},
		{"payment types", domain.FilterState{PaymentTypes: []domain.PaymentType{domain.PaymentCashless}}, []int64{2, 3}},
		{"both payment types", domain.FilterState{PaymentTypes: []domain.PaymentType{domain.PaymentCash, domain.PaymentCashless}}, []int64{1, 2, 3, 4, 5}},
		{"date from", domain.FilterState{DateRange: domain.DateRange{From: day(4)}}, []int64{4, 5}},
		{"date to", domain.FilterState{DateRange: domain.DateRange{To: day(2)}}, []int64{1, 2}},
		{"closed range is inclusive", domain.FilterState{DateRange: domain.DateRange{From: day(2), To: day(3)}}, []int64{2, 3}},
		{
			"dimensions are conjunctive",
			domain.FilterState{
				Organizations: []string{"Альфа", "Бета"},
				PaymentTypes:  []domain.PaymentType{domain.PaymentCash},
				PaidKMS:       boolPtr(false),
			},
			[]int64{1, 5},
		},
		{"unknown organization selects nothing", domain.FilterState{Organizations: []string{"Дельта"}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.filter)))
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	f := domain.FilterState{
		Promoters: []string{"Петров", "Сидоров"},
		PaidKMS:   boolPtr(true),
		DateRange: domain.DateRange{From: day(2)},
	}
	once := Apply(fixture(), f)
	assert.Equal(t, once, Apply(once, f))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	out := Apply(in, domain.FilterState{})
	out[0].OrganizationName = "changed"
	assert.Equal(t, "Альфа", in[0].OrganizationName)
}

func TestApply_EveryResultPassesEveryDimension(t *testing.T) {
	f := domain.FilterState{
		Organizations: []string{"Бета"},
		PaidToWorker:  boolPtr(false),
	}
	for _, s := range Apply(fixture(), f) {
		assert.Equal(t, "Бета", s.OrganizationName)
		assert.False(t, s.PaidToWorker)
	}
}

func TestOptions(t *testing.T) {
	shifts := append(fixture(), domain.Shift{OrganizationName: "  ", PromoterName: ""})
	opts := Options(shifts)

	assert.Equal(t, []string{"Альфа", "Бета", "Гамма"}, opts.Organizations)
	assert.Equal(t, []string{"Иванов", "Петров", "Сидоров"}, opts.Promoters)
	assert.Equal(t, []domain.PaymentType{domain.PaymentCash, domain.PaymentCashless}, opts.PaymentTypes)
}

func TestOptionsSelectTheirShifts(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, OrganizationName: "Альфа ", PromoterName: " Иванов"},
		{ID: 2, OrganizationName: "Бета", PromoterName: "Петров"},
	}
	opts := Options(shifts)
	require.Equal(t, []string{"Альфа", "Бета"}, opts.Organizations)
	require.Equal(t, []string{"Иванов", "Петров"}, opts.Promoters)

	byOrg := Apply(shifts, domain.FilterState{Organizations: opts.Organizations[:1]})
	require.Len(t, byOrg, 1)
	assert.Equal(t, int64(1), byOrg[0].ID)

	byPromoter := Apply(shifts, domain.FilterState{Promoters: []string{"Иванов "}})
	require.Len(t, byPromoter, 1)
	assert.Equal(t, int64(1), byPromoter[0].ID)
}
