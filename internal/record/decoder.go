// Package record decodes single lines of model output into raw transaction
// records. The model is instructed to emit NDJSON, but that is a best-effort
// contract: any line can be truncated, malformed or prose. Decoding failures
// are per-line rejections, never fatal.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bankstream/bankstream/internal/domain"
)

// Decode parses one newline-delimited record line.
//
// It returns (nil, nil) for blank lines, which are skipped silently, and a
// non-nil error for rejected lines. A returned record always has all four
// required fields with valid shapes and a non-negative amount.
func Decode(line string) (*domain.RawRecord, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil, nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("record: unmarshal line: %w", err)
	}

	date, err := getStringField(obj, "date")
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("record: required field %q is empty", "date")
	}
	// A blank description is unusual but structurally valid; the contract
	// only requires the field be present and a string.
	desc, err := getStringField(obj, "description")
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	amount, err := getFloat64Field(obj, "amount")
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("record: field %q is not finite", "amount")
	}

	typStr, err := getStringField(obj, "type")
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	typ := domain.TxType(strings.ToLower(strings.TrimSpace(typStr)))
	if !typ.Valid() {
		return nil, fmt.Errorf("record: field %q has value %q, want %q or %q",
			"type", typStr, domain.TxDebit, domain.TxCredit)
	}

	// The wire contract carries magnitudes; tolerate a signed amount and
	// keep the sign on the type tag only.
	return &domain.RawRecord{
		Date:        date,
		Description: desc,
		Amount:      math.Abs(amount),
		Type:        typ,
	}, nil
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
