package feedback

// Choice is one of the five fixed reaction levels.
type Choice string

const (
	Loved      Choice = "loved"
	Okay       Choice = "okay"
	Meh        Choice = "meh"
	Inaccurate Choice = "inaccurate"
	Hate       Choice = "hate"
)

var choiceText = map[Choice]string{
	Loved:      "😍 Loved it!",
	Okay:       "🙂 It's okay",
	Meh:        "😐 Meh",
	Inaccurate: "😕 Not accurate",
	Hate:       "😡 Hate it!",
}

// Choices lists the reactions in display order.
func Choices() []Choice {
	return []Choice{Loved, Okay, Meh, Inaccurate, Hate}
}

func (c Choice) Valid() bool {
	_, ok := choiceText[c]
	return ok
}

// Text is the label shown to users and stored in the log.
func (c Choice) Text() string {
	return choiceText[c]
}
