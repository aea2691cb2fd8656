package validation

import (
	"bytes"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/dataquality/jsonvalidator/internal/binder"
	"github.com/dataquality/jsonvalidator/internal/metrics"
	"github.com/dataquality/jsonvalidator/internal/registry"
)

// OnlyJSONLabel is the message_name metric label used when no target
// message name was provided, per spec.md §4.5.
const OnlyJSONLabel = "only_json"

// Request carries everything the orchestrator needs to validate one
// payload, mirroring spec.md §3's Validation Request.
type Request struct {
	// MessageName is the target message to bind against; empty means
	// "only parse JSON".
	MessageName string

	// JSON is either the JSON document itself (when JSONEscaped is
	// false) or a JSON-encoded string that unescapes to the document
	// (when JSONEscaped is true).
	JSON json.RawMessage

	// JSONEscaped defaults to true in the HTTP envelope; see spec.md §6.
	JSONEscaped bool

	FieldCheck       bool
	FieldName        string
	FieldValueCheck  json.RawMessage
	HaveFieldValue   bool
}

// PoolSource resolves the descriptor pool a validation call should bind
// against. The HTTP surface supplies registry.Store-backed
// snapshot+pool-cache; tests can supply a fixed pool.
type PoolSource interface {
	Pool() (*protoregistry.Files, error)
}

// Orchestrator sequences parse -> (optional) bind+serialize -> (optional)
// field-check, recording metrics around the whole call, per spec.md §4.5.
type Orchestrator struct {
	Pools   PoolSource
	Metrics metrics.Recorder
}

// New creates an Orchestrator. metrics.NoopRecorder{} is a valid choice
// when metrics are disabled.
func New(pools PoolSource, recorder metrics.Recorder) *Orchestrator {
	return &Orchestrator{Pools: pools, Metrics: recorder}
}

// Validate runs the full sequence described in spec.md §4.5, returning the
// first error encountered (short-circuiting).
func (o *Orchestrator) Validate(req Request) error {
	start := time.Now()

	messageName := req.MessageName
	label := messageName
	if label == "" {
		label = OnlyJSONLabel
	}

	fieldCheckLabel := "disabled"
	if req.FieldCheck {
		fieldCheckLabel = "enabled"
	}

	err := o.validate(req)

	// Per spec.md §4.5 step 5/6, the counter only increments once the
	// JSON itself parsed successfully; a JsonParseError/unescape error
	// never reaches this point.
	if !isParseFailure(err) {
		o.Metrics.IncRequests(label, fieldCheckLabel)
		o.Metrics.ObserveDuration(label, fieldCheckLabel, time.Since(start).Seconds())
	}

	return err
}

func isParseFailure(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *ErrJSONParse, *ErrJSONUnescape:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) validate(req Request) error {
	jsonText := req.JSON
	if req.JSONEscaped {
		unescaped, err := unescapeJSON(req.JSON)
		if err != nil {
			return &ErrJSONUnescape{Err: err}
		}
		jsonText = unescaped
	}

	jsonValue, err := decodeJSON(jsonText)
	if err != nil {
		return &ErrJSONParse{Err: err}
	}

	if req.MessageName != "" {
		pool, err := o.Pools.Pool()
		if err != nil {
			return err
		}

		md, ok := registry.FindMessage(pool, req.MessageName)
		if !ok {
			return &ErrUnknownMessage{Name: req.MessageName}
		}

		msg, err := binder.Bind(jsonValue, md)
		if err != nil {
			return err
		}

		if _, err := binder.Serialize(msg); err != nil {
			return err
		}
	}

	if req.FieldCheck {
		var expected any
		if req.HaveFieldValue {
			expected, err = decodeJSON(req.FieldValueCheck)
			if err != nil {
				return &ErrJSONParse{Err: err}
			}
		}

		if err := CheckField(jsonValue, req.FieldName, expected, req.HaveFieldValue); err != nil {
			return err
		}
	}

	return nil
}

// unescapeJSON mirrors the original's unescape_json: if the string is
// itself a JSON-quoted string, decode it once to recover the document
// text; otherwise the raw bytes are already the document.
func unescapeJSON(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		var s string
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&s); err != nil {
			return nil, err
		}
		return json.RawMessage(s), nil
	}

	return raw, nil
}

// decodeJSON parses raw preserving numeric literals as json.Number so the
// binder can enforce exact integer range checks.
func decodeJSON(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return v, nil
}
