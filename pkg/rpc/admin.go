package rpc

import "fmt"

// Principal stands in for whatever caller-identity type the host platform
// uses; the gateway core only needs to ask "is this principal authorized,"
// never to interpret the identity itself (§1: principal management is an
// external collaborator).
type Principal string

// ACL decides whether a principal may call UpdateApiKeys (§5, §6): the
// controller or any principal listed under manageApiKeys at install time.
type ACL struct {
	Controller    Principal
	ManageApiKeys map[Principal]struct{}
}

func NewACL(controller Principal, manageApiKeys []Principal) *ACL {
	acl := &ACL{Controller: controller, ManageApiKeys: make(map[Principal]struct{}, len(manageApiKeys))}
	for _, p := range manageApiKeys {
		acl.ManageApiKeys[p] = struct{}{}
	}
	return acl
}

func (a *ACL) IsAuthorized(caller Principal) bool {
	if caller == a.Controller {
		return true
	}
	_, ok := a.ManageApiKeys[caller]
	return ok
}

// ApiKeyUpdate is one entry of the updateApiKeys call: set or, with Key nil,
// delete the key for Provider.
type ApiKeyUpdate struct {
	Provider SupportedProvider
	Key      *string
}

// AdminService implements the admin surface described in §6, guarded by ACL
// exactly as §5's shared-resource rules require.
type AdminService struct {
	Registry *Registry
	Keys     *KeyStore
	ACL      *ACL
}

func NewAdminService(registry *Registry, keys *KeyStore, acl *ACL) *AdminService {
	return &AdminService{Registry: registry, Keys: keys, ACL: acl}
}

// GetProviders implements getProviders -- a query, no ACL check required.
func (a *AdminService) GetProviders() []ProviderInfo {
	return a.Registry.List()
}

// UpdateApiKeys implements updateApiKeys: upsert or delete keys, guarded by
// caller-principal ACL.
func (a *AdminService) UpdateApiKeys(caller Principal, updates []ApiKeyUpdate) error {
	if !a.ACL.IsAuthorized(caller) {
		return fmt.Errorf("updateApiKeys: %q is not authorized", caller)
	}
	for _, u := range updates {
		a.Keys.Upsert(u.Provider, u.Key)
	}
	return nil
}
