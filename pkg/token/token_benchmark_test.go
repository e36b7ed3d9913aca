package token_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/authflow/pkg/token"
)

func BenchmarkCodec_Issue(b *testing.B) {
	codec, err := token.NewCodec(testSecret)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, err := codec.Issue(token.PurposeEmailConfirm, "bench@example.com"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Verify(b *testing.B) {
	codec, err := token.NewCodec(testSecret)
	if err != nil {
		b.Fatal(err)
	}

	tok, err := codec.Issue(token.PurposeEmailConfirm, "bench@example.com")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := codec.Verify(token.PurposeEmailConfirm, tok, time.Hour); err != nil {
			b.Fatal(err)
		}
	}
}
