package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

// WriteText renders rows as tab-separated UTF-8 text with one header line.
// Total and divider rows only fill the description column.
func WriteText(w io.Writer, rows []ledger.Row) error {
	bw := bufio.NewWriter(w)

	writeLine(bw, Columns[:])

	for _, r := range rows {
		if r.IsSeparator() {
			writeLine(bw, []string{"", "", "", r.Description, "", "", "", ""})
			continue
		}

		writeLine(bw, textCells(r))
	}

	return bw.Flush()
}

func textCells(r ledger.Row) []string {
	return []string{r.No, r.Date, r.Time, r.Description, r.Income, r.Expense, r.Balance, r.Note}
}

// Tabs and newlines inside free text would shift columns.
var cellCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func writeLine(bw *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			bw.WriteByte('\t')
		}

		bw.WriteString(cellCleaner.Replace(c))
	}

	bw.WriteByte('\n')
}
