package binder

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/dynamicpb"
)

// serializeOptions emits every field, including ones still holding their
// protobuf default, matching skip-defaults = false per spec.md §4.3.
var serializeOptions = protojson.MarshalOptions{
	EmitUnpopulated: true,
}

// Serialize round-trips a bound dynamic message back to canonical JSON
// bytes. This exists solely to prove the message is well-formed end to
// end; the caller is not required to return the bytes to its own client.
func Serialize(msg *dynamicpb.Message) ([]byte, error) {
	out, err := serializeOptions.Marshal(msg)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	return out, nil
}
