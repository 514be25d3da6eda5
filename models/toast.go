package models

// ToastTone distinguishes success confirmations, informational outcomes
// (domain conflicts such as a slot claimed by someone else), and retryable
// failures.
type ToastTone string

const (
	ToneSuccess ToastTone = "success"
	ToneInfo    ToastTone = "info"
	ToneDanger  ToastTone = "danger"
)

// Toast is the only way coordinator outcomes reach the user: a dismissible
// message with a tone. Coordinators never surface raw errors.
type Toast struct {
	Text string    `json:"text"`
	Tone ToastTone `json:"tone"`
}

// ToastSink receives coordinator outcomes for display. The shell provides
// one at composition time.
type ToastSink func(Toast)

func SuccessToast(text string) Toast { return Toast{Text: text, Tone: ToneSuccess} }
func InfoToast(text string) Toast    { return Toast{Text: text, Tone: ToneInfo} }
func DangerToast(text string) Toast  { return Toast{Text: text, Tone: ToneDanger} }
