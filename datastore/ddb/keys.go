/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/datacheck/registry"
	"github.com/suparena/datacheck/storagemodels"
)

// Item is the table row of one resource. Attributes holds the JSON of the
// resource attributes.
type Item struct {
	Type       storagemodels.ResourceType `dynamodbav:"Type"`
	ID         string                     `dynamodbav:"ID"`
	Name       string                     `dynamodbav:"Name"`
	Attributes string                     `dynamodbav:"Attributes"`
	UpdatedAt  string                     `dynamodbav:"UpdatedAt"`
}

func init() {
	registry.RegisterKeyTemplate[Item](map[string]string{
		"PK":                        "RESOURCE#{Type}",
		"SK":                        "ID#{ID}",
		NameIndex.PartitionKeyName: "NAME#{Type}#{Name}",
		NameIndex.SortKeyName:      "ID#{ID}",
	})
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros fills the {Field} references of each template from the
// marshaled fields of keysInput.
func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))
	for fieldName, template := range indexMap {
		res[fieldName] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			switch tv := av[strings.Trim(macro, "{}")].(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
	}
	return res, nil
}

// itemKeys expands every key attribute of item.
func itemKeys(item Item) (map[string]string, error) {
	tmpl, ok := registry.KeyTemplate[Item]()
	if !ok {
		return nil, fmt.Errorf("no key template registered for %T", item)
	}
	return expandMacros(tmpl, item)
}

// primaryKey builds the table key of a resource.
func primaryKey(resourceType storagemodels.ResourceType, id string) (map[string]types.AttributeValue, error) {
	expanded, err := itemKeys(Item{Type: resourceType, ID: id})
	if err != nil {
		return nil, err
	}
	return buildKeyFromExpanded(expanded)
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
// It assumes that the expanded map has valid non-empty values for "PK" and "SK".
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" || strings.HasSuffix(sk, "#") {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}
