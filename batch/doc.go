/*
Package batch describes where validation data comes from.

A Datasource owns named data assets; an asset turns batch request options
into a concrete execution.Batch. A Config names a way of requesting batches
from an asset and is what validations refer to:

	ds := batch.NewDatasource("warehouse")
	asset, _ := ds.AddCSVAsset("orders", "testdata/orders.csv")
	cfg, _ := asset.AddBatchConfig("all_orders", nil)

	b, err := cfg.GetBatch(ctx, batch.RequestOptions{"region": "emea"})

Assets own persistence of their batch configs: Config.Save delegates to the
asset. IdentifierBundle gives the datasource, asset and config identities
used when a config is persisted by reference.
*/
package batch
