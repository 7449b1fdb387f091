package ledger

import (
	"fmt"

	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

// MsgDeleted confirms a removed entry.
const MsgDeleted = "Row ဖျက်ပြီးပါပြီ ✔"

func kyat(e *Entry) string {
	return numfmt.ToLocalizedDigits(e.Amount.Round(0).String())
}

// AddedMessage confirms a newly recorded entry.
func AddedMessage(e *Entry) string {
	if e.Variant == VariantIncome {
		return fmt.Sprintf("Income (%s) %s ကျပ် ထည့်ပြီးပါပြီ ✔", e.Description, kyat(e))
	}

	return kyat(e) + " ကျပ် အသစ်ထည့်ပြီးပါပြီ ✔"
}

func UpdatedMessage(e *Entry) string {
	if e.Variant == VariantIncome {
		return fmt.Sprintf("Income ကို (%s) %s ကျပ် ပြင်ပြီးပါပြီ ✔", e.Description, kyat(e))
	}

	return kyat(e) + " ကျပ် ပြင်ပြီးပါပြီ ✔"
}

func ClosedMessage(c *Closure) string {
	return fmt.Sprintf("%s/%s လ စုစုပေါင်း (သုံးငွေ): %s ကျပ် ✔",
		numfmt.Localize(int(c.Month)), numfmt.Localize(c.Year), numfmt.FormatAmountLocalized(c.Total))
}
