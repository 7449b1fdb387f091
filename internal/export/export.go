package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatPDF:
		return f, nil
	}

	return "", fmt.Errorf("unsupported export format %q", s)
}

var ErrPDFUnavailable = errors.New("pdf export unavailable")

const (
	MsgPDFUnavailable = "PDF ထုတ်/export လုပ်ရန် PDF renderer ကို ယခု အသုံးပြု၍ မရပါ"
	MsgFontFallback   = "မြန်မာဖောင့် မတွေ့ပါ၊ Helvetica ဖြင့် ထုတ်ထားပါသည်"
)

// Columns are the statement column captions shared by every renderer.
var Columns = [8]string{"စဉ်", "ရက်စွဲ", "အချိန်", "အကြောင်းအရာ", "ဝင်ငွေ", "သုံးငွေ", "လက်ကျန်ငွေ", "မှတ်ချက်"}

// Document is a rendered statement ready to be downloaded.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
	// Warning is set when the document was produced in a degraded way,
	// e.g. without a Myanmar font.
	Warning string
}

// StatementSource derives month statements. *ledger.Service satisfies it.
type StatementSource interface {
	MonthStatement(ctx context.Context, cur ledger.Cursor, p ledger.Period) (*ledger.Statement, error)
}

type Options struct {
	PDFEnabled bool
	// FontPath is a TrueType font used for PDF output. When empty FontDirs
	// (or the platform font directories) are searched for a Myanmar font.
	FontPath string
	FontDirs []string
}

type Service struct {
	statements StatementSource
	opts       Options
}

func NewService(statements StatementSource, opts Options) *Service {
	return &Service{statements: statements, opts: opts}
}

func Filename(p ledger.Period, f Format) string {
	return fmt.Sprintf("summary_%d_%02d.%s", p.Year, int(p.Month), f)
}

// Render builds the statement of p for the cursor's user and renders it.
// The statement is derived fresh on every call.
func (s *Service) Render(ctx context.Context, cur ledger.Cursor, p ledger.Period, f Format) (*Document, error) {
	if f == FormatPDF && !s.opts.PDFEnabled {
		return nil, ErrPDFUnavailable
	}

	st, err := s.statements.MonthStatement(ctx, cur, p)
	if err != nil {
		return nil, fmt.Errorf("building statement: %w", err)
	}

	var buf bytes.Buffer

	doc := &Document{Filename: Filename(p, f)}

	switch f {
	case FormatText:
		if err := WriteText(&buf, st.Rows); err != nil {
			return nil, fmt.Errorf("rendering text: %w", err)
		}

		doc.ContentType = "text/plain; charset=utf-8"
	case FormatPDF:
		fontPath := s.fontPath()

		usedFallback, err := WritePDF(&buf, p, st.Rows, fontPath)
		if err != nil {
			slog.Error("failed to render pdf", "period", p, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrPDFUnavailable, err)
		}

		if usedFallback {
			doc.Warning = MsgFontFallback
		}

		doc.ContentType = "application/pdf"
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}

	doc.Body = buf.Bytes()

	return doc, nil
}

func (s *Service) fontPath() string {
	if s.opts.FontPath != "" {
		return s.opts.FontPath
	}

	dirs := s.opts.FontDirs
	if len(dirs) == 0 {
		dirs = DefaultFontDirs()
	}

	path, _ := FindMyanmarFont(dirs)

	return path
}
