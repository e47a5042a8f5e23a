/*
Package storagemodels defines the wire documents exchanged with remote
stores.

A remote payload is an envelope whose data member holds one resource or a
list of them:

	{"data": {"id": "7c3...", "attributes": {"validation_config": {...}}}}
	{"data": [{"id": "7c3...", "attributes": {...}}]}

ParseSingle accepts both shapes but rejects a list that does not hold
exactly one resource. Parse failures are errors.StoreParseError values
carrying the offending payload.

Listings accept functional options:

	remote.List(ctx, storagemodels.ResourceExpectationSuite,
	    storagemodels.WithName("orders"),
	    storagemodels.WithLimit(10),
	)
*/
package storagemodels
