package identifier

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

const (
	// codeAlphabet omits 0/O and 1/I so codes survive being read aloud.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// CodeLength is the length of generated public access codes.
	CodeLength = 8

	// maxCodeAttempts bounds collision retries before giving up.
	maxCodeAttempts = 10
)

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator produces opaque, case-normalized public access codes.
type CodeGenerator struct {
	length   int
	attempts int
}

// NewCodeGenerator constructs a generator with default length and retries.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{length: CodeLength, attempts: maxCodeAttempts}
}

// Generate returns a fresh code that exists reports as untaken. A collision on
// every attempt is astronomically unlikely at this code length but is still
// surfaced as RESOURCE_EXHAUSTED rather than ignored.
func (g *CodeGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.attempts; attempt++ {
		code, err := randomCode(g.length)
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.NewResourceExhausted("unique code generation exhausted retries")
}

func randomCode(length int) (string, error) {
	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	for i := range result {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = codeAlphabet[num.Int64()]
	}
	return string(result), nil
}
