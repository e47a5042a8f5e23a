/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

// GSIConfig names a global secondary index and its key attributes.
type GSIConfig struct {
	IndexName        string
	PartitionKeyName string
	SortKeyName      string
}

// NameIndex serves lookups of resources by type and name. Items carry
// NAME#<type>#<name> in PartitionKeyName and ID#<id> in SortKeyName, so
// duplicates of a name surface as several items of one partition.
var NameIndex = GSIConfig{
	IndexName:        "GSI1",
	PartitionKeyName: "PK1",
	SortKeyName:      "SK1",
}
