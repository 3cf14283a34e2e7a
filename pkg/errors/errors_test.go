package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		retryable bool
	}{
		{code: CodeValidation, publicMsg: "validation failed"},
		{code: CodeUnparsableInput, publicMsg: "input could not be parsed"},
		{code: CodeNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, publicMsg: "conflict detected"},
		{code: CodeStorage, publicMsg: "storage operation failed", retryable: true},
		{code: CodeInternal, publicMsg: "internal error", retryable: true},
		{code: CodeDependency, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if !meta.Retryable {
		t.Fatal("unknown codes must inherit the internal retry policy")
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(New(CodeValidation, "bad input")) {
		t.Fatal("validation errors must not be retryable")
	}
	if !Retryable(New(CodeStorage, "tx failed")) {
		t.Fatal("storage errors must be retryable")
	}
	if !Retryable(stdErrors.New("untyped")) {
		t.Fatal("untyped errors default to the internal policy")
	}
}

func TestDumpExposesDriverDetails(t *testing.T) {
	cause := &pq.Error{Code: "23505", Constraint: "staging_orders_order_id_key", Table: "staging_orders"}
	wrapped := Wrap(CodeStorage, cause, "upsert failed")

	dump := Dump(wrapped)
	if dump.Code != CodeStorage {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "staging_orders_order_id_key" {
		t.Fatalf("driver details not extracted: %+v", dump)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected the full chain, got %v", dump.Chain)
	}

	if got := Dump(nil); got.TopMessage != "" {
		t.Fatalf("Dump(nil) should be empty, got %+v", got)
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no such record")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}
