package registry_test

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// simpleMessageFDSet returns a minimal FileDescriptorSet encoding a single
// message named msgName with string field "key1", int32 field "key2", and
// bool field "key3" — the shape used throughout spec.md's end-to-end
// scenarios.
func simpleMessageFDSet(fileName, msgName string) []byte {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(fileName),
		Package: proto.String("test.v1"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String(msgName),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("key1"),
						Number:   proto.Int32(1),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						JsonName: proto.String("key1"),
					},
					{
						Name:     proto.String("key2"),
						Number:   proto.Int32(2),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						JsonName: proto.String("key2"),
					},
					{
						Name:     proto.String("key3"),
						Number:   proto.Int32(3),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum(),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						JsonName: proto.String("key3"),
					},
				},
			},
		},
	}

	fdset := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdp}}
	raw, err := proto.Marshal(fdset)
	if err != nil {
		panic(err)
	}

	return raw
}

// malformedFDSetBytes returns bytes that do not decode as a FileDescriptorSet:
// a varint-typed field tag with its value truncated away.
func malformedFDSetBytes() []byte {
	return []byte{0x08}
}

// dependencyFDSet returns a FileDescriptorSet for a single file defining a
// message named msgName with one string field "label" — the file referenced
// cross-file by containerFDSet below.
func dependencyFDSet(fileName, msgName string) []byte {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(fileName),
		Package: proto.String("test.v1"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String(msgName),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("label"),
						Number:   proto.Int32(1),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						JsonName: proto.String("label"),
					},
				},
			},
		},
	}

	fdset := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdp}}
	raw, err := proto.Marshal(fdset)
	if err != nil {
		panic(err)
	}

	return raw
}

// containerFDSet returns a FileDescriptorSet for a file defining a message
// named msgName with a message-typed field "dep" referencing
// ".test.v1.<depMsgName>" declared in depFileName. Whether that reference
// actually resolves depends on whether depFileName's FileDescriptorProto is
// also present in the same build — the caller controls that by choosing
// which FDSets it upserts alongside this one.
func containerFDSet(fileName, msgName, depFileName, depMsgName string) []byte {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(fileName),
		Package:    proto.String("test.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{depFileName},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String(msgName),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("dep"),
						Number:   proto.Int32(1),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						TypeName: proto.String(".test.v1." + depMsgName),
						JsonName: proto.String("dep"),
					},
				},
			},
		},
	}

	fdset := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdp}}
	raw, err := proto.Marshal(fdset)
	if err != nil {
		panic(err)
	}

	return raw
}
