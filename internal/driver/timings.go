package driver

import (
	"mirck/internal/diag"
	"mirck/internal/observ"
)

// AppendTimings adds the timer report to bag as an ObsTimings diagnostic,
// raising the bag limit if it is full.
func AppendTimings(bag *diag.Bag, timer *observ.Timer) {
	if bag == nil || timer == nil {
		return
	}
	entry := timer.Diagnostic()
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
