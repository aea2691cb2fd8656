package registry

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// DescriptorLinkError is returned by BuildPool when one or more
// FileDescriptorProtos in the snapshot could not be linked because a
// cross-file symbol reference never resolved.
type DescriptorLinkError struct {
	Unresolved []string // file paths that never linked
	LastErr    error
}

func (e *DescriptorLinkError) Error() string {
	return fmt.Sprintf("failed to link %d descriptor file(s): %v (last error: %v)", len(e.Unresolved), e.Unresolved, e.LastErr)
}

func (e *DescriptorLinkError) Unwrap() error { return e.LastErr }

// BuildPool reconstructs a fully-linked descriptor pool from a snapshot.
// The build is pure over its input: two builds from equal snapshots
// produce structurally equivalent pools. If any entry fails to decode, or
// any cross-file reference never resolves, the build fails and no partial
// pool is ever returned.
func BuildPool(snap Snapshot) (*protoregistry.Files, error) {
	entries := make([]Entry, len(snap.Entries))
	copy(entries, snap.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	pending := make([]*descriptorpb.FileDescriptorProto, 0, len(entries))
	for _, entry := range entries {
		var fdset descriptorpb.FileDescriptorSet
		if err := proto.Unmarshal(entry.Raw, &fdset); err != nil {
			return nil, &BadDescriptorError{Name: entry.Name, Err: err}
		}
		pending = append(pending, fdset.GetFile()...)
	}

	files := new(protoregistry.Files)

	// Repeatedly sweep the pending list, registering every file whose
	// imports are already resolvable. A file that fails this round may
	// succeed in a later one once its dependencies have linked. No
	// progress across a full sweep means a genuine unresolved reference.
	var lastErr error
	for len(pending) > 0 {
		progressed := false
		next := pending[:0:0]

		for _, fdp := range pending {
			fd, err := protodesc.NewFile(fdp, files)
			if err != nil {
				lastErr = err
				next = append(next, fdp)
				continue
			}
			if err := files.RegisterFile(fd); err != nil {
				lastErr = err
				next = append(next, fdp)
				continue
			}
			progressed = true
		}

		if !progressed {
			unresolved := make([]string, 0, len(next))
			for _, fdp := range next {
				unresolved = append(unresolved, fdp.GetName())
			}
			return nil, &DescriptorLinkError{Unresolved: unresolved, LastErr: lastErr}
		}

		pending = next
	}

	return files, nil
}

// FindMessage looks up a message descriptor by fully-qualified or bare name
// in the built pool. Bare names are also tried against every package in the
// pool, matching the original service's tolerant lookup by message name
// alone (producers upload one message per logical file in practice).
func FindMessage(files *protoregistry.Files, name string) (protoreflect.MessageDescriptor, bool) {
	if d, err := files.FindDescriptorByName(protoreflect.FullName(name)); err == nil {
		if md, ok := d.(protoreflect.MessageDescriptor); ok {
			return md, true
		}
	}

	var found protoreflect.MessageDescriptor
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		msgs := fd.Messages()
		for i := 0; i < msgs.Len(); i++ {
			if string(msgs.Get(i).Name()) == name {
				found = msgs.Get(i)
				return false
			}
		}
		return true
	})

	return found, found != nil
}
