package rpc

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ProviderInfo is the public shape returned by getProviders (§6 admin surface).
type ProviderInfo struct {
	Provider SupportedProvider
	Cluster  Cluster
	Access   RpcAccess
}

// staticAccess is the closed, install-time-immutable mapping from provider
// to how it is reached (§3 invariant: a SupportedProvider resolves to
// exactly one RpcAccess).
var staticAccess = map[SupportedProvider]struct {
	cluster Cluster
	access  RpcAccess
}{
	AlchemyMainnet: {Mainnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://solana-mainnet.g.alchemy.com/v2/{API_KEY}"},
	}},
	AlchemyDevnet: {Devnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://solana-devnet.g.alchemy.com/v2/{API_KEY}"},
	}},
	HeliusMainnet: {Mainnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://mainnet.helius-rpc.com/?api-key={API_KEY}"},
	}},
	HeliusDevnet: {Devnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://devnet.helius-rpc.com/?api-key={API_KEY}"},
	}},
	AnkrMainnet: {Mainnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://rpc.ankr.com/solana/{API_KEY}"},
		PublicURL:     "https://rpc.ankr.com/solana",
	}},
	AnkrDevnet: {Devnet, RpcAccess{
		Authenticated: true,
		Auth:          Auth{Kind: UrlParameter, URLPattern: "https://rpc.ankr.com/solana_devnet/{API_KEY}"},
		PublicURL:     "https://rpc.ankr.com/solana_devnet",
	}},
	PublicNodeMainnet: {Mainnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://solana-rpc.publicnode.com",
	}},
	PublicNodeDevnet: {Devnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://solana-devnet-rpc.publicnode.com",
	}},
	PublicNodeTestnet: {Testnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://solana-testnet-rpc.publicnode.com",
	}},
	SolanaFoundationMainnet: {Mainnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://api.mainnet-beta.solana.com",
	}},
	SolanaFoundationDevnet: {Devnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://api.devnet.solana.com",
	}},
	SolanaFoundationTestnet: {Testnet, RpcAccess{
		Authenticated: false,
		PublicURL:     "https://api.testnet.solana.com",
	}},
}

// canonicalSets fixes the stable, priority-ordered provider list per
// cluster used by RpcSources::Default. This is a policy decision (§9's
// open design note), not derived at runtime: changing it is a breaking
// upgrade for callers observing Inconsistent payloads.
var canonicalSets = map[Cluster][]SupportedProvider{
	Mainnet: {HeliusMainnet, AlchemyMainnet, AnkrMainnet, PublicNodeMainnet, SolanaFoundationMainnet},
	Devnet:  {HeliusDevnet, AlchemyDevnet, AnkrDevnet, PublicNodeDevnet, SolanaFoundationDevnet},
	Testnet: {PublicNodeTestnet, SolanaFoundationTestnet},
}

// CanonicalSet returns the stable, priority-ordered provider list for cluster.
func CanonicalSet(cluster Cluster) []SupportedProvider {
	set, ok := canonicalSets[cluster]
	if !ok {
		return nil
	}
	out := make([]SupportedProvider, len(set))
	copy(out, set)
	return out
}

// KeyStore holds API keys for authenticated providers. It is process-wide,
// mutated only through UpdateApiKeys, and never mutated by Resolve (§4.1,
// §5's shared-resource rules).
type KeyStore struct {
	mu         sync.RWMutex
	keys       map[SupportedProvider]string
	generation uint64
}

func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[SupportedProvider]string)}
}

func (k *KeyStore) Get(p SupportedProvider) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[p]
	return key, ok
}

// Generation increments on every Upsert; the registry includes it in its
// resolved-endpoint cache key so a rotated key is never served stale.
func (k *KeyStore) Generation() uint64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.generation
}

// Upsert sets or, when key is nil, deletes the stored key for p.
func (k *KeyStore) Upsert(p SupportedProvider, key *string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if key == nil {
		delete(k.keys, p)
	} else {
		k.keys[p] = *key
	}
	k.generation++
}

// Registry resolves SupportedProviders to endpoints, applying key
// substitution and an optional URL override.
type Registry struct {
	keys     *KeyStore
	override *OverrideProvider
	cache    *lru.Cache[cacheKey, RpcEndpoint]
}

type cacheKey struct {
	provider SupportedProvider
	// keyGeneration changes whenever the underlying key is upserted, so a
	// stale cached resolution is never returned after a key rotation.
	keyGeneration uint64
}

// NewRegistry builds a Registry. override may be nil.
func NewRegistry(keys *KeyStore, override *OverrideProvider) *Registry {
	cache, _ := lru.New[cacheKey, RpcEndpoint](256)
	return &Registry{keys: keys, override: override, cache: cache}
}

// List implements getProviders.
func (r *Registry) List() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(staticAccess))
	for p, entry := range staticAccess {
		infos = append(infos, ProviderInfo{Provider: p, Cluster: entry.cluster, Access: entry.access})
	}
	return infos
}

// Resolve implements C1's resolution algorithm (§4.1).
func (r *Registry) Resolve(_ context.Context, provider SupportedProvider) (RpcEndpoint, error) {
	entry, ok := staticAccess[provider]
	if !ok {
		return RpcEndpoint{}, fmt.Errorf("resolve %v: %w", provider, &RpcError{
			Kind: KindInvalidRpcConfig, Message: fmt.Sprintf("unknown provider %v", provider),
		})
	}

	key := cacheKey{provider: provider, keyGeneration: r.keys.Generation()}
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached, nil
		}
	}

	endpoint, err := r.resolveUncached(provider, entry.access)
	if err != nil {
		return RpcEndpoint{}, err
	}
	if r.cache != nil {
		r.cache.Add(key, endpoint)
	}
	return endpoint, nil
}

func (r *Registry) resolveUncached(provider SupportedProvider, access RpcAccess) (RpcEndpoint, error) {
	var endpoint RpcEndpoint
	endpoint.Headers = map[string]string{}

	if !access.Authenticated {
		endpoint.URL = access.PublicURL
	} else {
		key, hasKey := r.keys.Get(provider)
		switch {
		case hasKey && access.Auth.Kind == BearerToken:
			endpoint.URL = access.Auth.URL
			endpoint.Headers["Authorization"] = "Bearer " + key
		case hasKey && access.Auth.Kind == UrlParameter:
			endpoint.URL = strings.Replace(access.Auth.URLPattern, "{API_KEY}", key, 1)
		case !hasKey && access.PublicURL != "":
			endpoint.URL = access.PublicURL
		default:
			return RpcEndpoint{}, &RpcError{
				Kind:    KindInvalidRpcConfig,
				Message: fmt.Sprintf("no api key configured for %v and no public fallback", provider),
			}
		}
	}

	endpoint.URL = r.applyOverride(endpoint.URL)
	return endpoint, nil
}

func (r *Registry) applyOverride(url string) string {
	if r.override == nil || r.override.OverrideURL == nil || r.override.OverrideURL.Pattern == nil {
		return url
	}
	return r.override.OverrideURL.Pattern.ReplaceAllString(url, r.override.OverrideURL.Replacement)
}

// CompileOverride compiles a regex pattern + replacement into an
// OverrideProvider, per spec §6's install argument contract.
func CompileOverride(pattern, replacement string) (*OverrideProvider, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile override pattern: %w", err)
	}
	return &OverrideProvider{OverrideURL: &OverrideURL{Pattern: re, Replacement: replacement}}, nil
}
