/*
Package ddb provides a DynamoDB implementation of the datastore.Remote
interface.

The Remote uses a single-table design. Key attributes are expanded from the
key template registered for Item:

	"PK":  "RESOURCE#{Type}"     // one partition per resource type
	"SK":  "ID#{ID}"
	"PK1": "NAME#{Type}#{Name}"  // GSI1, lookups by name
	"SK1": "ID#{ID}"

Each row carries the resource attributes as a JSON string, so the rows can
be read back into the same envelopes the store exchanges with any remote.
Create and Replace are conditional writes: creating over an existing key
fails with errors.ErrAlreadyExists, replacing or deleting a missing
resource with errors.ErrNotFound.

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "us-east-1"})
	remote := ddb.New(client, "datacheck", logger)
*/
package ddb
