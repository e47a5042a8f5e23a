/*
Package registry provides the name-keyed and type-keyed registries shared by
datacheck's components.

Registry[T] maps names to implementations. It backs the expectation type
registry: each expectation type registers itself once, during
initialization, and is looked up by the type name carried in a
configuration:

	var types = registry.New[Expectation]("expectation")

	func init() {
	    types.MustRegister("expect_column_values_to_not_be_null", notNull)
	}

Registering the same name twice panics.

Key templates associate a Go type with the key layout used when the type is
written to a single-table store such as DynamoDB:

	registry.RegisterKeyTemplate[Item](map[string]string{
	    "PK": "RESOURCE#{Type}",
	    "SK": "ID#{ID}",
	})

Both registries are safe for concurrent use and are normally populated in
init() functions.
*/
package registry
