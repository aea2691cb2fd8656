package binder

import (
	"encoding/json"
	"math"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// MaxDepth bounds nested-message recursion during binding, per spec.md §9,
// to keep an adversarial schema from blowing the goroutine stack.
const MaxDepth = 64

// Bind walks v (expected to be a JSON object decoded with
// json.Decoder.UseNumber, i.e. map[string]any with json.Number leaves)
// against md, producing a fully populated dynamic message. Every set value
// is validated against its field descriptor's kind constraint; any
// violation short-circuits with a *BindError.
func Bind(v any, md protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(md)
	if err := bindInto(v, msg, md, 0); err != nil {
		return nil, err
	}

	return msg, nil
}

func bindInto(v any, msg *dynamicpb.Message, md protoreflect.MessageDescriptor, depth int) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return &BindError{Kind: KindNotAnObject}
	}

	fields := md.Fields()
	for name, raw := range obj {
		fd := fields.ByName(protoreflect.Name(name))
		if fd == nil {
			return &BindError{Kind: KindUnknownField, Field: name}
		}

		if fd.IsList() || fd.IsMap() {
			return &BindError{Kind: KindUnsupported, Field: name}
		}

		pv, err := bindScalar(raw, fd, depth)
		if err != nil {
			return err
		}

		msg.Set(fd, pv)
	}

	return nil
}

func bindScalar(raw any, fd protoreflect.FieldDescriptor, depth int) (protoreflect.Value, error) {
	name := string(fd.Name())

	switch fd.Kind() { //nolint:exhaustive // group/unknown kinds are not reachable from a FieldDescriptor
	case protoreflect.DoubleKind, protoreflect.FloatKind:
		n, ok := raw.(json.Number)
		if !ok {
			return protoreflect.Value{}, mismatch(name, "a number")
		}
		f, err := n.Float64()
		if err != nil {
			return protoreflect.Value{}, mismatch(name, "a number")
		}
		if fd.Kind() == protoreflect.FloatKind {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return protoreflect.Value{}, mismatch(name, "a float value")
			}
			return protoreflect.ValueOfFloat32(float32(f)), nil
		}
		return protoreflect.ValueOfFloat64(f), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		i, err := integerValue(raw)
		if err != nil {
			return protoreflect.Value{}, mismatch(name, "an integer value")
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return protoreflect.Value{}, mismatch(name, "an integer value")
		}
		return protoreflect.ValueOfInt32(int32(i)), nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		i, err := integerValue(raw)
		if err != nil {
			return protoreflect.Value{}, mismatch(name, "a 64-bit integer value")
		}
		return protoreflect.ValueOfInt64(i), nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		u, err := unsignedValue(raw)
		if err != nil {
			return protoreflect.Value{}, mismatch(name, "an unsigned integer value")
		}
		if u > math.MaxUint32 {
			return protoreflect.Value{}, mismatch(name, "an unsigned integer value")
		}
		return protoreflect.ValueOfUint32(uint32(u)), nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		u, err := unsignedValue(raw)
		if err != nil {
			return protoreflect.Value{}, mismatch(name, "an unsigned 64-bit integer value")
		}
		return protoreflect.ValueOfUint64(u), nil

	case protoreflect.BoolKind:
		b, ok := raw.(bool)
		if !ok {
			return protoreflect.Value{}, mismatch(name, "a boolean value")
		}
		return protoreflect.ValueOfBool(b), nil

	case protoreflect.StringKind:
		s, ok := raw.(string)
		if !ok {
			return protoreflect.Value{}, mismatch(name, "a string value")
		}
		return protoreflect.ValueOfString(s), nil

	case protoreflect.BytesKind:
		// The JSON string's raw UTF-8 bytes are used directly, not
		// base64-decoded; see spec.md §9's resolved Open Question.
		s, ok := raw.(string)
		if !ok {
			return protoreflect.Value{}, mismatch(name, "a byte array value")
		}
		return protoreflect.ValueOfBytes([]byte(s)), nil

	case protoreflect.EnumKind:
		s, ok := raw.(string)
		if !ok {
			return protoreflect.Value{}, mismatch(name, "a valid enum value as a string")
		}
		ev := fd.Enum().Values().ByName(protoreflect.Name(s))
		if ev == nil {
			return protoreflect.Value{}, mismatch(name, "a valid enum value")
		}
		return protoreflect.ValueOfEnum(ev.Number()), nil

	case protoreflect.MessageKind, protoreflect.GroupKind:
		// Well-known types and Any (package google.protobuf) have their own
		// JSON mappings, which this binder does not implement.
		if fd.Message().FullName().Parent() == "google.protobuf" {
			return protoreflect.Value{}, &BindError{Kind: KindUnsupported, Field: name}
		}
		if depth+1 >= MaxDepth {
			return protoreflect.Value{}, &BindError{Kind: KindUnsupported, Field: name}
		}
		nested := dynamicpb.NewMessage(fd.Message())
		if err := bindInto(raw, nested, fd.Message(), depth+1); err != nil {
			// A NotAnObject failure at the nested level is reported as a
			// TypeMismatch against the parent field, matching the
			// original's "expects a nested message object" message.
			if be, ok := err.(*BindError); ok && be.Kind == KindNotAnObject {
				return protoreflect.Value{}, mismatch(name, "a nested message object")
			}
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfMessage(nested.ProtoReflect()), nil

	default:
		return protoreflect.Value{}, &BindError{Kind: KindUnsupported, Field: name}
	}
}

func mismatch(field, expected string) error {
	return &BindError{Kind: KindTypeMismatch, Field: field, Expected: expected}
}

// integerValue extracts an exact int64 from a JSON numeric leaf, rejecting
// fractional values and out-of-range magnitudes.
func integerValue(raw any) (int64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(n.String(), 10, 64)
}

// unsignedValue extracts an exact uint64 from a JSON numeric leaf,
// rejecting negative and fractional values.
func unsignedValue(raw any) (uint64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(n.String(), 10, 64)
}
