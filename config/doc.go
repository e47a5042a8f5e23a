/*
Package config loads the datacheck project configuration.

Settings come from a YAML file (datacheck.yaml by default) layered over
Default, then from environment variables, optionally seeded from a .env
file:

	mode: local
	store:
	  backend: badger
	  dir: .datacheck
	validation:
	  result_format: COMPLETE
	  max_concurrency: 8
	log:
	  level: debug

Cloud mode persists to a DynamoDB table:

	mode: cloud
	dynamodb:
	  table: datacheck
	  region: eu-west-1
	  endpoint: http://localhost:8000
*/
package config
