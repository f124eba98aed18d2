package analytics

const (
	strengthThreshold = 80
	weaknessThreshold = 70

	excellentThreshold = 80
	goodThreshold      = 60
)

// Insights splits categories into strengths and weaknesses. Categories in
// [70,80) land in neither list.
type Insights struct {
	Strengths  []string
	Weaknesses []string
}

// CategoryInsights classifies categories by accuracy, keeping input order.
func CategoryInsights(categories []CategoryAccuracy) Insights {
	out := Insights{Strengths: []string{}, Weaknesses: []string{}}
	for _, c := range categories {
		switch {
		case c.Accuracy >= strengthThreshold:
			out.Strengths = append(out.Strengths, c.CategoryName)
		case c.Accuracy < weaknessThreshold:
			out.Weaknesses = append(out.Weaknesses, c.CategoryName)
		}
	}
	return out
}

// Tip is a coarse label for overall accuracy; callers map it to display text.
type Tip string

const (
	TipExcellent  Tip = "excellent"
	TipGood       Tip = "good"
	TipNeedsFocus Tip = "needs_focus"
)

// StudyTip classifies overall accuracy.
func StudyTip(overallAccuracy float64) Tip {
	switch {
	case overallAccuracy >= excellentThreshold:
		return TipExcellent
	case overallAccuracy >= goodThreshold:
		return TipGood
	default:
		return TipNeedsFocus
	}
}
