package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/model"
)

// Envelope is the single response shape of the activity API: every body
// carrying an entity wraps it as {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

type rawEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeList reads {"data": [...]}. A data member that is not an array
// yields an empty list rather than an error.
func decodeList(r io.Reader) ([]model.Activity, error) {
	var env rawEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		logger.Warn("List payload is not an array, treating as empty", logger.F("data", string(data)))
		return []model.Activity{}, nil
	}

	activities := []model.Activity{}
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return activities, nil
}

// decodeOne reads {"data": {...}}
func decodeOne(r io.Reader) (model.Activity, error) {
	var env rawEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return model.Activity{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return model.Activity{}, fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}

	var a model.Activity
	if err := json.Unmarshal(data, &a); err != nil {
		return model.Activity{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return a, nil
}
