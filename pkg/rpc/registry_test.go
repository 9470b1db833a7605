package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolveUnauthenticatedFallsBackToPublicURL(t *testing.T) {
	keys := NewKeyStore()
	reg := NewRegistry(keys, nil)

	ep, err := reg.Resolve(context.Background(), PublicNodeMainnet)
	require.NoError(t, err)
	assert.Equal(t, "https://solana-rpc.publicnode.com", ep.URL)
}

func TestRegistryResolveWithApiKeySplicesUrlParameter(t *testing.T) {
	keys := NewKeyStore()
	key := "secret-key"
	keys.Upsert(AlchemyMainnet, &key)

	reg := NewRegistry(keys, nil)
	ep, err := reg.Resolve(context.Background(), AlchemyMainnet)
	require.NoError(t, err)
	assert.Equal(t, "https://solana-mainnet.g.alchemy.com/v2/secret-key", ep.URL)
}

func TestRegistryResolveWithoutKeyAndNoPublicFallbackErrors(t *testing.T) {
	keys := NewKeyStore()
	reg := NewRegistry(keys, nil)

	_, err := reg.Resolve(context.Background(), AlchemyMainnet)
	assert.Error(t, err)
}

func TestRegistryResolveAppliesOverrideToResolvedURL(t *testing.T) {
	keys := NewKeyStore()
	override, err := CompileOverride(`^https://.*\.publicnode\.com$`, "http://localhost:8899")
	require.NoError(t, err)

	reg := NewRegistry(keys, override)
	ep, err := reg.Resolve(context.Background(), PublicNodeMainnet)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", ep.URL)
}

func TestRegistryCacheInvalidatesOnKeyRotation(t *testing.T) {
	keys := NewKeyStore()
	first := "key-one"
	keys.Upsert(AlchemyMainnet, &first)

	reg := NewRegistry(keys, nil)
	ep1, err := reg.Resolve(context.Background(), AlchemyMainnet)
	require.NoError(t, err)
	assert.Contains(t, ep1.URL, "key-one")

	second := "key-two"
	keys.Upsert(AlchemyMainnet, &second)

	ep2, err := reg.Resolve(context.Background(), AlchemyMainnet)
	require.NoError(t, err)
	assert.Contains(t, ep2.URL, "key-two")
}

func TestRegistryListReturnsAllProviders(t *testing.T) {
	reg := NewRegistry(NewKeyStore(), nil)
	infos := reg.List()
	assert.Len(t, infos, 12)
}

func TestCanonicalSetIsStablePerCluster(t *testing.T) {
	a := CanonicalSet(Mainnet)
	b := CanonicalSet(Mainnet)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	// Mutating the returned slice must not affect the registry's internal state.
	a[0] = AnkrMainnet
	c := CanonicalSet(Mainnet)
	assert.NotEqual(t, a, c)
}
