package model

// Label is the human-readable name of a sentiment score.
type Label string

const (
	VeryNegative Label = "Very Negative"
	Negative     Label = "Negative"
	Neutral      Label = "Neutral"
	Positive     Label = "Positive"
	VeryPositive Label = "Very Positive"
)

// MinScore and MaxScore bound the sentiment scale.
const (
	MinScore = 1
	MaxScore = 5
)

var labels = [...]Label{VeryNegative, Negative, Neutral, Positive, VeryPositive}

// SentimentResult is a score on the 1-5 scale and its fixed label.
type SentimentResult struct {
	Score int
	Label Label
}

// LabelFor returns the label for score and false when score is off the scale.
func LabelFor(score int) (Label, bool) {
	if score < MinScore || score > MaxScore {
		return "", false
	}
	return labels[score-MinScore], true
}
