package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// Partition key attribute names of the provisioned join tables. Each table
// names its composite attribute after the pair it joins.
const (
	BookTagKeyAttribute        = "bookId_tagId"
	CollectionBookKeyAttribute = "collectionId_bookId"
)

// RelationshipStore implements ports.RelationshipStore over a join table
// (BookTags or CollectionBooks). Each link is one item whose partition key is
// the deterministic left-right composite, stored under the table's own key
// attribute, and whose sort key is the owner, so link, unlink and existence
// checks are all single-key operations.
//
// The two listing directions cannot use the composite key. They query the
// byLeft (userId, leftId) and byRight (userId, rightId) GSIs; if an index
// name is unset the listing degrades to a filtered Scan of the whole table,
// acceptable only against local stacks.
type RelationshipStore struct {
	client     *dynamodb.Client
	tableName  string
	keyAttr    string
	leftIndex  string
	rightIndex string
	logger     *zap.Logger
}

// NewRelationshipStore creates a RelationshipStore for one join table.
// keyAttr is the table's partition key attribute, for example
// BookTagKeyAttribute for the BookTags table.
func NewRelationshipStore(client *dynamodb.Client, tableName, keyAttr, leftIndex, rightIndex string, logger *zap.Logger) ports.RelationshipStore {
	return &RelationshipStore{
		client:     client,
		tableName:  tableName,
		keyAttr:    keyAttr,
		leftIndex:  leftIndex,
		rightIndex: rightIndex,
		logger:     logger,
	}
}

// CompositeKey derives the single-string join key for a link. The order of
// the endpoints is fixed by the relation (book before tag, collection before
// book), so the derivation is stable for a given pair.
func CompositeKey(leftID, rightID string) string {
	return leftID + "_" + rightID
}

type relationshipItem struct {
	UserID    string `dynamodbav:"userId"`
	LeftID    string `dynamodbav:"leftId"`
	RightID   string `dynamodbav:"rightId"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// key builds the (composite, userId) primary key under the table's configured
// key attribute.
func (s *RelationshipStore) key(ownerID, leftID, rightID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		s.keyAttr: &types.AttributeValueMemberS{Value: CompositeKey(leftID, rightID)},
		"userId":  &types.AttributeValueMemberS{Value: ownerID},
	}
}

// Link records the relationship. A plain put keeps it idempotent: relinking
// an existing pair rewrites the same item.
func (s *RelationshipStore) Link(ctx context.Context, ownerID, leftID, rightID string) error {
	av, err := attributevalue.MarshalMap(relationshipItem{
		UserID:    ownerID,
		LeftID:    leftID,
		RightID:   rightID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return errors.NewInternalError("failed to marshal relationship").WithCause(err)
	}
	av[s.keyAttr] = &types.AttributeValueMemberS{Value: CompositeKey(leftID, rightID)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return translateStorageError("link", err)
	}
	return nil
}

// Unlink removes the relationship. Deleting an absent pair is a no-op.
func (s *RelationshipStore) Unlink(ctx context.Context, ownerID, leftID, rightID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(ownerID, leftID, rightID),
	})
	if err != nil {
		return translateStorageError("unlink", err)
	}
	return nil
}

// Exists reports whether the relationship is present.
func (s *RelationshipStore) Exists(ctx context.Context, ownerID, leftID, rightID string) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(ownerID, leftID, rightID),
	})
	if err != nil {
		return false, translateStorageError("relationship exists", err)
	}
	return result.Item != nil, nil
}

// ListRightsForLeft returns all right-side ids linked to leftID.
func (s *RelationshipStore) ListRightsForLeft(ctx context.Context, ownerID, leftID string) ([]string, error) {
	items, err := s.listByEndpoint(ctx, s.leftIndex, "leftId", ownerID, leftID)
	if err != nil {
		return nil, translateStorageError("list rights for left", err)
	}
	return collectEndpoint(items, func(item relationshipItem) string { return item.RightID }), nil
}

// ListLeftsForRight returns all left-side ids linked to rightID.
func (s *RelationshipStore) ListLeftsForRight(ctx context.Context, ownerID, rightID string) ([]string, error) {
	items, err := s.listByEndpoint(ctx, s.rightIndex, "rightId", ownerID, rightID)
	if err != nil {
		return nil, translateStorageError("list lefts for right", err)
	}
	return collectEndpoint(items, func(item relationshipItem) string { return item.LeftID }), nil
}

func (s *RelationshipStore) listByEndpoint(
	ctx context.Context,
	indexName, endpointAttr, ownerID, endpointID string,
) ([]relationshipItem, error) {
	var raw []map[string]types.AttributeValue
	var err error
	if indexName != "" {
		raw, err = s.queryEndpointIndex(ctx, indexName, endpointAttr, ownerID, endpointID)
	} else {
		raw, err = s.scanEndpoint(ctx, endpointAttr, ownerID, endpointID)
	}
	if err != nil {
		return nil, err
	}

	items := make([]relationshipItem, 0, len(raw))
	for _, av := range raw {
		var item relationshipItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			s.logger.Warn("skipping unreadable relationship item", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RelationshipStore) queryEndpointIndex(
	ctx context.Context,
	indexName, endpointAttr, ownerID, endpointID string,
) ([]map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(
			expression.Key("userId").Equal(expression.Value(ownerID)).
				And(expression.Key(endpointAttr).Equal(expression.Value(endpointID))),
		).
		Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return items, nil
}

// scanEndpoint is the index-less fallback. It reads the entire join table and
// filters server-side: O(table size) per call.
func (s *RelationshipStore) scanEndpoint(
	ctx context.Context,
	endpointAttr, ownerID, endpointID string,
) ([]map[string]types.AttributeValue, error) {
	s.logger.Warn("relationship listing falling back to full-table scan; configure the endpoint index",
		zap.String("table", s.tableName),
		zap.String("endpoint", endpointAttr),
	)

	expr, err := expression.NewBuilder().
		WithFilter(
			expression.Name("userId").Equal(expression.Value(ownerID)).
				And(expression.Name(endpointAttr).Equal(expression.Value(endpointID))),
		).
		Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return items, nil
}

func collectEndpoint(items []relationshipItem, pick func(relationshipItem) string) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, pick(item))
	}
	return ids
}
