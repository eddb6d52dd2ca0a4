package pricing

import (
	"staydesk/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2025, time.March, 1, 14, 0, 0, 0, time.UTC)

func TestPeriods(t *testing.T) {
	tests := []struct {
		name string
		kind string
		d    time.Duration
		want int
	}{
		{"room exact 36h", model.KindRoom, 36 * time.Hour, 3},
		{"room partial period rounds up", model.KindRoom, 13 * time.Hour, 2},
		{"room under one period", model.KindRoom, time.Hour, 1},
		{"vehicle two days", model.KindVehicle, 48 * time.Hour, 2},
		{"vehicle a day and a minute", model.KindVehicle, 24*time.Hour + time.Minute, 2},
		{"degenerate interval", model.KindRoom, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Periods(tt.kind, start, start.Add(tt.d)))
		})
	}
}

func TestQuote_RoomThreePeriods(t *testing.T) {
	unit := &model.Unit{Kind: model.KindRoom, Price: 500}

	amounts := Quote(unit, start, start.Add(36*time.Hour))

	assert.Equal(t, model.Amounts{
		UnitPrice:      500,
		Periods:        3,
		BasePrice:      1500,
		ReservationFee: 180,
		Total:          1680,
	}, amounts)
}

func TestQuote_FeeIsRounded(t *testing.T) {
	unit := &model.Unit{Kind: model.KindVehicle, Price: 95}

	amounts := Quote(unit, start, start.Add(24*time.Hour))

	// 95 * 0.12 = 11.4
	assert.Equal(t, 11.0, amounts.ReservationFee)
	assert.Equal(t, 106.0, amounts.Total)
}

func TestCorrect_RecomputesTotal(t *testing.T) {
	original := Quote(&model.Unit{Kind: model.KindRoom, Price: 500}, start, start.Add(36*time.Hour))

	corrected := Correct(original, 1200, 0)

	assert.Equal(t, 1200.0, corrected.BasePrice)
	assert.Equal(t, 0.0, corrected.ReservationFee)
	assert.Equal(t, 1200.0, corrected.Total)
	assert.Equal(t, 3, corrected.Periods)
	assert.Equal(t, 500.0, corrected.UnitPrice)
}
