package settlements

import (
	"time"

	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
)

// resolvePeriod validates q and turns it into an inclusive day window.
func resolvePeriod(q PeriodQuery) (Period, error) {
	if q.Month != 0 || q.Year != 0 {
		if q.From != nil || q.To != nil {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "use either month/year or from/to, not both")
		}
		from, to, err := monthWindow(q.Month, q.Year)
		if err != nil {
			return Period{}, err
		}
		return Period{From: &from, To: &to}, nil
	}
	if q.From == nil && q.To == nil {
		return Period{UnpaidOnly: true}, nil
	}

	var period Period
	if q.From != nil {
		from := startOfDay(*q.From)
		period.From = &from
	}
	if q.To != nil {
		to := startOfDay(*q.To)
		period.To = &to
	}
	if period.From != nil && period.To != nil && period.From.After(*period.To) {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to").
			WithDetails(map[string]any{"from": period.From, "to": period.To})
	}
	return period, nil
}

func monthWindow(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12").
			WithDetails(map[string]any{"month": month})
	}
	if year < 2000 || year > 9999 {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "year is out of range").
			WithDetails(map[string]any{"year": year})
	}
	from, to := monthBounds(year, time.Month(month), time.UTC)
	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// exclusiveEnd turns an inclusive day into the first instant after it.
func exclusiveEnd(day *time.Time) *time.Time {
	if day == nil {
		return nil
	}
	next := day.AddDate(0, 0, 1)
	return &next
}
