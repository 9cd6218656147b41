package alarm

// Equal reports structural equality between two alarms. Days compare as a
// set: the platform treats the day list as unordered, so a reordered list is
// not a change worth re-rendering for.
func Equal(a, b Alarm) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Time != b.Time ||
		a.Enabled != b.Enabled || a.Repeat != b.Repeat || a.State != b.State {
		return false
	}
	return sameDaySet(a.Days, b.Days)
}

// EqualLists is the re-render gate: order-sensitive structural equality over
// two alarm lists. Push-updates arrive for every state change anywhere in
// the platform, most of them irrelevant here; callers recompute only when
// this returns false. O(n) in total field count, no hashing.
func EqualLists(a, b []Alarm) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameDaySet(a, b []Day) bool {
	return daySet(a) == daySet(b)
}

func daySet(days []Day) (set [7]bool) {
	for _, d := range days {
		if i := dayIndex(d); i >= 0 {
			set[i] = true
		}
	}
	return set
}

func dayIndex(d Day) int {
	for i, tag := range AllDays() {
		if tag == d {
			return i
		}
	}
	return -1
}
