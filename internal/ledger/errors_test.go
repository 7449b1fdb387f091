package ledger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
		wantOk bool
	}{
		{
			name:   "Direct",
			err:    &ledger.ValidationError{Field: "amount", Message: ledger.MsgInvalidAmount},
			want:   ledger.MsgInvalidAmount,
			wantOk: true,
		},
		{
			name:   "Wrapped",
			err:    fmt.Errorf("line 3: %w", &ledger.ValidationError{Field: "description", Message: ledger.MsgExpenseDescriptionRequired}),
			want:   ledger.MsgExpenseDescriptionRequired,
			wantOk: true,
		},
		{name: "Other", err: errors.New("boom")},
		{name: "NotFound", err: ledger.ErrNotFound},
		{name: "Nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ledger.ValidationMessage(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
