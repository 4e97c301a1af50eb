package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "trapi: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Transform",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "trapi: Transform: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("TargetEncodingBlock.Fit", 3, 2, 0)

	want := "trapi: TargetEncodingBlock.Fit: dimension mismatch on axis 0 (rows). Expected 3, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LabelEncodingBlock", "Transform")

	want := "trapi: LabelEncodingBlock: this block is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("renamed_columns", "length must match methods", 3)

	want := "trapi: validation failed for parameter 'renamed_columns': length must match methods (got: 3)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestNewUnknownCategoryError(t *testing.T) {
	tests := []struct {
		name    string
		column  string
		wantMsg string
	}{
		{
			name:    "with column",
			column:  "city",
			wantMsg: `trapi: LabelEncoder.Transform: column "city" contains previously unseen label "Z"`,
		},
		{
			name:    "without column",
			wantMsg: `trapi: LabelEncoder.Transform: y contains previously unseen label "Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUnknownCategoryError("LabelEncoder.Transform", tt.column, "Z")
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			var catErr *UnknownCategoryError
			if !As(err, &catErr) {
				t.Error("Error should be castable to *UnknownCategoryError")
			}
		})
	}
}

func TestDataConversionWarning(t *testing.T) {
	warn := NewDataConversionWarning("price", "float64", "float16", "values fit in half precision")

	want := `column "price" converted from float64 to float16. Reason: values fit in half precision`
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}
}

func TestWarnUsesHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewDataConversionWarning("a", "int64", "int8", "range"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d rows, got %d", "Fit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Fit: expected 10 rows, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestStabilizedDivide(t *testing.T) {
	if got := StabilizedDivide(10, 2); got < 4.9999999 || got > 5.0 {
		t.Errorf("StabilizedDivide(10, 2) = %v, want ~5", got)
	}
	// 4/(0+1e-9) は実行時に 3.9999999999999995e9 になる
	got := StabilizedDivide(4, 0)
	if math.IsInf(got, 0) || math.Abs(got-4e9) > 1 {
		t.Errorf("StabilizedDivide(4, 0) = %v, want ~4e9", got)
	}
}
