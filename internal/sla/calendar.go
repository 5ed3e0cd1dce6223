package sla

import "time"

// DeliveryDate adds businessDays to from, skipping Saturdays and Sundays.
// Zero or negative days return from unchanged.
func DeliveryDate(from time.Time, businessDays int) time.Time {
	d := from
	for added := 0; added < businessDays; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		added++
	}
	return d
}
