/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/storagemodels"
)

// Client is the subset of the DynamoDB API the remote uses. *sdk.Client
// satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// ClientConfig describes how to reach DynamoDB. Empty credentials fall back
// to the default AWS credential chain.
type ClientConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// NewDynamoDBClient initializes a DynamoDB client.
func NewDynamoDBClient(ctx context.Context, cfg ClientConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Remote implements datastore.Remote on a single DynamoDB table. Resources
// of one type share a partition; the name index serves lookups by name.
type Remote struct {
	client    Client
	tableName string
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs a Remote over tableName.
func New(client Client, tableName string, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{client: client, tableName: tableName, logger: logger, now: time.Now}
}

func (d *Remote) Get(ctx context.Context, resourceType storagemodels.ResourceType, id string) ([]byte, error) {
	key, err := primaryKey(resourceType, id)
	if err != nil {
		return nil, errors.NewValidationError("id", err.Error())
	}
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError(string(resourceType), id)
	}
	r, err := toResource(out.Item)
	if err != nil {
		return nil, err
	}
	return storagemodels.NewEnvelope(r)
}

func (d *Remote) List(ctx context.Context, resourceType storagemodels.ResourceType, opts ...storagemodels.ListOption) ([]byte, error) {
	o := storagemodels.ApplyListOptions(opts...)

	input := &sdk.QueryInput{TableName: &d.tableName}
	if o.Name != "" {
		expanded, err := itemKeys(Item{Type: resourceType, Name: o.Name})
		if err != nil {
			return nil, err
		}
		input.IndexName = aws.String(NameIndex.IndexName)
		input.KeyConditionExpression = aws.String(NameIndex.PartitionKeyName + " = :pk")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: expanded[NameIndex.PartitionKeyName]},
		}
	} else {
		expanded, err := itemKeys(Item{Type: resourceType})
		if err != nil {
			return nil, err
		}
		input.KeyConditionExpression = aws.String("PK = :pk")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: expanded["PK"]},
		}
	}

	var resources []storagemodels.Resource
	for page := 1; ; page++ {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		for _, item := range out.Items {
			r, err := toResource(item)
			if err != nil {
				return nil, err
			}
			resources = append(resources, r)
			if o.Limit > 0 && len(resources) == o.Limit {
				return storagemodels.NewListEnvelope(resources)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			d.logger.Debug("listed resources", "type", resourceType, "count", len(resources), "pages", page)
			return storagemodels.NewListEnvelope(resources)
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Create assigns a new id and stores the resource.
func (d *Remote) Create(ctx context.Context, resourceType storagemodels.ResourceType, body []byte) ([]byte, error) {
	r, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.Type = resourceType
	if err := d.put(ctx, r, "attribute_not_exists(PK)"); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return nil, errors.NewAlreadyExistsError(string(resourceType), r.ID)
		}
		return nil, err
	}
	return storagemodels.NewEnvelope(r)
}

// Replace overwrites an existing resource.
func (d *Remote) Replace(ctx context.Context, resourceType storagemodels.ResourceType, id string, body []byte) ([]byte, error) {
	r, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	r.ID = id
	r.Type = resourceType
	if err := d.put(ctx, r, "attribute_exists(PK)"); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return nil, errors.NewNotFoundError(string(resourceType), id)
		}
		return nil, err
	}
	return storagemodels.NewEnvelope(r)
}

func (d *Remote) Delete(ctx context.Context, resourceType storagemodels.ResourceType, id string) error {
	key, err := primaryKey(resourceType, id)
	if err != nil {
		return errors.NewValidationError("id", err.Error())
	}
	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:           &d.tableName,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(string(resourceType), id)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// put writes r with its key attributes under condition.
func (d *Remote) put(ctx context.Context, r storagemodels.Resource, condition string) error {
	attrs, err := json.Marshal(r.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}
	item := Item{
		Type:       r.Type,
		ID:         r.ID,
		Name:       r.ResourceName(string(r.Type)),
		Attributes: string(attrs),
		UpdatedAt:  strfmt.DateTime(d.now().UTC()).String(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	expanded, err := itemKeys(item)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &d.tableName,
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	d.logger.Debug("stored resource", "type", r.Type, "id", r.ID, "name", item.Name)
	return nil
}

func parseBody(body []byte) (storagemodels.Resource, error) {
	r, err := storagemodels.ParseSingle(body)
	if err != nil {
		return r, errors.NewValidationError("body", err.Error())
	}
	return r, nil
}

func toResource(raw map[string]types.AttributeValue) (storagemodels.Resource, error) {
	var item Item
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return storagemodels.Resource{}, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	r := storagemodels.Resource{ID: item.ID, Type: item.Type}
	if item.Attributes != "" {
		if err := json.Unmarshal([]byte(item.Attributes), &r.Attributes); err != nil {
			return r, errors.NewStoreParseError(fmt.Sprintf("invalid attributes: %v", err), item.Attributes)
		}
	}
	return r, nil
}
