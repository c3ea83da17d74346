package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alanya-store/order-notifier/internal/models"
)

// DecodeOrderSubmission parses a JSON order body.
// An empty body is an empty submission; anything other than a single JSON object is rejected.
func DecodeOrderSubmission(r io.Reader) (models.OrderSubmission, error) {
	var sub models.OrderSubmission

	data, err := io.ReadAll(r)
	if err != nil {
		return sub, fmt.Errorf("%w: read body: %v", ErrInvalidPayload, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return sub, nil
	}
	if data[0] != '{' {
		return sub, fmt.Errorf("%w: body must be a JSON object", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&sub); err != nil {
		return models.OrderSubmission{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.OrderSubmission{}, fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidPayload)
	}

	return sub, nil
}
