// Package store persists expectation suites and validation configs.
//
// A Store runs in one of two modes. In local mode values live in a
// datastore.KeyValue under their name, encoded as canonical JSON (sorted
// keys, indented) so repeated saves of an unchanged value are
// byte-identical. References to other persisted objects are stored as
// {name, id} pairs and rehydrated on read. Ids are assigned on first Add and
// never change: adding a value whose id differs from the one persisted under
// the same key fails with an errors.IdentityConflictError.
//
// In cloud mode values are resources on a datastore.Remote, addressed by
// CloudIdentifier. The remote assigns ids, and nested suites are inlined.
// Malformed payloads fail with errors.StoreParseError carrying the payload.
//
//	suites := store.NewLocal[*expectation.Suite](kv, store.SuiteCodec{})
//	err := suites.Add(ctx, suites.Key("orders", ""), suite)
package store
