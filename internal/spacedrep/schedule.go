package spacedrep

// Intervals defines the expanding review ladder in days.
// Stage 0 is the interval given to a freshly missed question.
var Intervals = []int{1, 3, 7, 14, 30, 60}

// MaxStage is the highest stage index in Intervals.
const MaxStage = 5

// MasteredIntervalDays is the interval at which a missed question counts as
// mastered in the error statistics.
const MasteredIntervalDays = 30

// StageOf returns the ladder index of intervalDays. Intervals that are not on
// the ladder map to stage 0.
func StageOf(intervalDays int) int {
	for i, d := range Intervals {
		if d == intervalDays {
			return i
		}
	}
	return 0
}

// NextInterval returns the interval after intervalDays on the ladder,
// capped at the last rung.
func NextInterval(intervalDays int) int {
	return Intervals[min(StageOf(intervalDays)+1, MaxStage)]
}
