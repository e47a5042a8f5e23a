/*
Package datacheck validates tabular data against declarative expectations.

Expectations are grouped into suites and evaluated by a validator against a
batch of data served by one of several execution backends: an in-memory
frame, a SQL database or a partitioned frame. Every expectation compiles to
metric requests; requests shared by several expectations are computed once.

A Project ties the pieces together. It holds the registered datasources and
two stores, one for suites and one for validation configs, backed either by
a local key-value store (JSON files or badger) or by a DynamoDB table:

	cfg, _ := config.Load("datacheck.yaml")
	project, _ := datacheck.Open(ctx, cfg)
	defer project.Close()

	ds := batch.NewDatasource("shop")
	asset, _ := ds.AddCSVAsset("orders", "orders.csv")
	orders, _ := asset.AddBatchConfig("all_orders", nil)
	_ = project.Datasources.Register(ds)

	suite, _ := expectation.LoadSuiteFile("orders.yaml")
	_ = project.AddValidationConfig(ctx, store.NewValidationConfig("nightly", orders, suite))

	res, _ := project.Run(ctx, "nightly", nil)
	fmt.Println(res.Success, res.Statistics.SuccessPercent)

Results are never persisted.
*/
package datacheck
