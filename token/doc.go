// Package token manages the authentication token that gates every probe.
//
// The external auth service issues short-lived bearer tokens in exchange for
// a project API key. Manager keeps a single cached AuthContext and refreshes
// it synchronously when it is missing or within a safety margin of expiry.
// The cached context is replaced whole on refresh, never edited in place,
// and concurrent refreshes are collapsed into one fetch.
//
//	client := token.NewClient(token.ClientConfig{
//	    AuthURL: "https://api.example.com/v5/core/{proj_key}/auth/",
//	    APIKey:  apiKey,
//	})
//	mgr := token.NewManager(client, token.ManagerConfig{ProjectKey: projectKey})
//
//	bearer, err := mgr.Token(ctx)
//	if err != nil {
//	    // Abort the whole cycle: probing with a stale or absent token
//	    // would only produce rejected requests.
//	}
//
// A fetch failure never mutates the cached state; the previous context (if
// any) stays in place for inspection, and the failure is reported to the
// caller.
package token
