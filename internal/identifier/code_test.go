package identifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

func TestGenerateProducesWellFormedCodes(t *testing.T) {
	gen := NewCodeGenerator()
	seen := map[string]bool{}

	for i := 0; i < 100; i++ {
		code, err := gen.Generate(context.Background(), func(ctx context.Context, c string) (bool, error) {
			return false, nil
		})
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q", ch)
		}
		assert.False(t, seen[code], "code %s repeated within sample", code)
		seen[code] = true
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	gen := NewCodeGenerator()
	calls := 0
	code, err := gen.Generate(context.Background(), func(ctx context.Context, c string) (bool, error) {
		calls++
		return calls < 3, nil // first two candidates collide
	})
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, calls)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	gen := NewCodeGenerator()
	calls := 0
	_, err := gen.Generate(context.Background(), func(ctx context.Context, c string) (bool, error) {
		calls++
		return true, nil
	})
	require.Error(t, err)
	assert.Equal(t, maxCodeAttempts, calls)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "RESOURCE_EXHAUSTED", domainErr.Code)
}

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "TCK-000001", FormatTicketNumber(1))
	assert.Equal(t, "TCK-000042", FormatTicketNumber(42))
	assert.Equal(t, "TCK-1000000", FormatTicketNumber(1000000))
}
