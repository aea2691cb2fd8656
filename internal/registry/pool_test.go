package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataquality/jsonvalidator/internal/registry"
)

func TestBuildPool_ResolvesMessage(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("m1.pb", simpleMessageFDSet("m1.proto", "MyMessage")))

	pool, err := registry.BuildPool(store.Snapshot())
	require.NoError(t, err)

	md, ok := registry.FindMessage(pool, "MyMessage")
	require.True(t, ok)
	assert.Equal(t, "MyMessage", string(md.Name()))
	assert.Equal(t, 3, md.Fields().Len())
}

func TestBuildPool_UnknownMessage(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("m1.pb", simpleMessageFDSet("m1.proto", "MyMessage")))

	pool, err := registry.BuildPool(store.Snapshot())
	require.NoError(t, err)

	_, ok := registry.FindMessage(pool, "NoSuchMessage")
	assert.False(t, ok)
}

func TestBuildPool_EmptySnapshotBuildsEmptyPool(t *testing.T) {
	store := registry.NewStore()
	pool, err := registry.BuildPool(store.Snapshot())
	require.NoError(t, err)

	_, ok := registry.FindMessage(pool, "Anything")
	assert.False(t, ok)
}

func TestBuildPool_DeterministicAcrossEqualSnapshots(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("a.pb", simpleMessageFDSet("a.proto", "A")))
	require.NoError(t, store.Upsert("b.pb", simpleMessageFDSet("b.proto", "B")))

	snap := store.Snapshot()

	pool1, err := registry.BuildPool(snap)
	require.NoError(t, err)
	pool2, err := registry.BuildPool(snap)
	require.NoError(t, err)

	md1, ok1 := registry.FindMessage(pool1, "A")
	md2, ok2 := registry.FindMessage(pool2, "A")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, md1.FullName(), md2.FullName())
	assert.Equal(t, md1.Fields().Len(), md2.Fields().Len())
}

func TestBuildPool_MultipleFilesAllResolve(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("a.pb", simpleMessageFDSet("a.proto", "A")))
	require.NoError(t, store.Upsert("b.pb", simpleMessageFDSet("b.proto", "B")))
	require.NoError(t, store.Upsert("c.pb", simpleMessageFDSet("c.proto", "C")))

	pool, err := registry.BuildPool(store.Snapshot())
	require.NoError(t, err)

	for _, name := range []string{"A", "B", "C"} {
		_, ok := registry.FindMessage(pool, name)
		assert.True(t, ok, "expected %s to resolve", name)
	}
}

func TestBuildPool_BadEntryFailsBuild(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("a.pb", simpleMessageFDSet("a.proto", "A")))

	// Simulate a store corrupted out of band from Upsert's own validation
	// by building a pool from a hand-rolled snapshot with a bad entry.
	snap := store.Snapshot()
	snap.Entries = append(snap.Entries, registry.Entry{Name: "bad.pb", Raw: malformedFDSetBytes()})

	_, err := registry.BuildPool(snap)
	require.Error(t, err)

	var badErr *registry.BadDescriptorError
	assert.ErrorAs(t, err, &badErr)
}

func TestBuildPool_ResolvesCrossFileTypeReference(t *testing.T) {
	store := registry.NewStore()
	// Store keys are chosen so the container file sorts and is therefore
	// attempted before its dependency, forcing BuildPool's worklist sweep
	// to make a second pass before the reference resolves.
	require.NoError(t, store.Upsert("a-container.pb", containerFDSet("container.proto", "Container", "dep.proto", "Dep")))
	require.NoError(t, store.Upsert("b-dep.pb", dependencyFDSet("dep.proto", "Dep")))

	pool, err := registry.BuildPool(store.Snapshot())
	require.NoError(t, err)

	md, ok := registry.FindMessage(pool, "Container")
	require.True(t, ok)

	depField := md.Fields().ByName("dep")
	require.NotNil(t, depField)
	assert.Equal(t, "Dep", string(depField.Message().Name()))
}

func TestBuildPool_MissingCrossFileDependencyFailsWithLinkError(t *testing.T) {
	store := registry.NewStore()
	// dep.proto is referenced via Dependency/TypeName but never uploaded,
	// so the reference can never resolve no matter how many sweeps run.
	require.NoError(t, store.Upsert("container.pb", containerFDSet("container.proto", "Container", "dep.proto", "Dep")))

	_, err := registry.BuildPool(store.Snapshot())
	require.Error(t, err)

	var linkErr *registry.DescriptorLinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Contains(t, linkErr.Unresolved, "container.proto")
}

func TestPoolCache_HitsOnSameGeneration(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("a.pb", simpleMessageFDSet("a.proto", "A")))

	cache := registry.NewPoolCache()
	snap := store.Snapshot()

	pool1, err := cache.GetOrBuild(snap)
	require.NoError(t, err)
	pool2, err := cache.GetOrBuild(snap)
	require.NoError(t, err)

	assert.Same(t, pool1, pool2)
}

func TestPoolCache_InvalidatesOnUpsert(t *testing.T) {
	store := registry.NewStore()
	require.NoError(t, store.Upsert("a.pb", simpleMessageFDSet("a.proto", "A")))

	cache := registry.NewPoolCache()
	pool1, err := cache.GetOrBuild(store.Snapshot())
	require.NoError(t, err)

	require.NoError(t, store.Upsert("b.pb", simpleMessageFDSet("b.proto", "B")))
	cache.Invalidate()

	pool2, err := cache.GetOrBuild(store.Snapshot())
	require.NoError(t, err)

	assert.NotSame(t, pool1, pool2)
	_, ok := registry.FindMessage(pool2, "B")
	assert.True(t, ok)
}
