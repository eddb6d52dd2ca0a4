package pricing

import (
	"math"
	"staydesk/pkg/model"
	"time"
)

// Periods counts the billable periods between start and end, rounding any partial
// period up. A valid interval is always at least one period.
func Periods(kind string, start, end time.Time) int {
	period := model.ReservationPeriod(kind)
	d := end.Sub(start)
	if d <= 0 {
		return 1
	}
	n := int(d / period)
	if d%period != 0 {
		n++
	}
	return max(n, 1)
}

// Fee is the reservation fee on base, rounded to a whole amount.
func Fee(base float64) float64 {
	return math.Round(base * model.ReservationFeeRate)
}

// Quote prices unit for the interval at its current rate.
func Quote(unit *model.Unit, start, end time.Time) model.Amounts {
	periods := Periods(unit.Kind, start, end)
	base := unit.Price * float64(periods)
	fee := Fee(base)
	return model.Amounts{
		UnitPrice:      unit.Price,
		Periods:        periods,
		BasePrice:      base,
		ReservationFee: fee,
		Total:          base + fee,
	}
}

// Correct applies an admin override. Unit price and periods are kept for the record.
func Correct(current model.Amounts, basePrice, fee float64) model.Amounts {
	current.BasePrice = basePrice
	current.ReservationFee = fee
	current.Total = basePrice + fee
	return current
}
