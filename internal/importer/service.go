package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=importer
type Ledger interface {
	Import(ctx context.Context, cur *ledger.Cursor, params []ledger.AddParams, force bool) (*ledger.ImportResult, error)
}

type Service struct {
	ledger   Ledger
	importer Importer
}

func NewService(l Ledger) *Service {
	return &Service{
		ledger:   l,
		importer: NewStatementParser(),
	}
}

// Import parses r and stores its entries for the cursor's user. See
// ledger.Service.Import for how duplicates are handled.
func (s *Service) Import(ctx context.Context, cur *ledger.Cursor, r io.Reader, force bool) (*ledger.ImportResult, error) {
	params, err := s.importer.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	return s.ledger.Import(ctx, cur, params, force)
}
