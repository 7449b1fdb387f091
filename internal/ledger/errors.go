package ledger

import "errors"

var (
	ErrNotFound  = errors.New("entry not found")
	ErrNoEntries = errors.New("no expense entries for this month")
)

// Messages shown to the user. They match the wording the ledger has always used.
const (
	MsgExpenseDescriptionRequired = "သုံးငွေအကြောင်းအရာ ထည့်ပါ"
	MsgInvalidAmount              = "ပမာဏမှန်မှန်ရေးပါ"
	MsgNoEntries                  = "ယခု လအတွက် expense entry မရှိသေးပါ။"
	MsgNotFound                   = "မတွေ့ပါ"
	MsgInvalidDate                = "ရက်စွဲကို DD-MM-YYYY ပုံစံဖြင့်ရေးပါ"
	MsgInvalidTime                = "အချိန်ကို HH:MM ပုံစံဖြင့်ရေးပါ"
)

// ValidationError rejects user input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ValidationMessage returns the user facing message when err is or wraps a
// ValidationError.
func ValidationMessage(err error) (string, bool) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return "", false
	}

	return ve.Message, true
}
