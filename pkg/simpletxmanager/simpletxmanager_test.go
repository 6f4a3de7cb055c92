package simpletxmanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	errExecQuery := errors.New("storage: exec query failed")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: false,
		},
		{
			name: "serialization failure wrapped by repository",
			err:  fmt.Errorf("%w: Reserve - execute update: %w", errExecQuery, &pq.Error{Code: "40001"}),
			want: true,
		},
		{
			name: "deadlock at commit",
			err:  fmt.Errorf("commit transaction: %w", &pq.Error{Code: "40P01"}),
			want: true,
		},
		{
			name: "unique violation is not retryable",
			err:  &pq.Error{Code: "23505"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
