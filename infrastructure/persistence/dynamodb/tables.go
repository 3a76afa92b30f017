// Package dynamodb implements the entity stores and the relationship encoder
// over the provisioned table layout: one table per entity, each partitioned
// by the entity key and sorted by "userId", so the owner is half of every
// primary key and no read or write path can omit it.
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// entityKey builds the (id, userId) primary key used by the Books, Tags and
// Collections tables.
func entityKey(id, ownerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":     &types.AttributeValueMemberS{Value: id},
		"userId": &types.AttributeValueMemberS{Value: ownerID},
	}
}

// queryByOwner fetches every item belonging to an owner. With an index name
// it queries the owner-partitioned GSI and paginates through all results.
// Without one it degrades to a filtered Scan: O(table size), tolerable only
// against local stacks, and logged as such.
func queryByOwner(
	ctx context.Context,
	client *dynamodb.Client,
	tableName, indexName, ownerID string,
	logger *zap.Logger,
) ([]map[string]types.AttributeValue, error) {
	if indexName == "" {
		return scanByOwner(ctx, client, tableName, ownerID, logger)
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(ownerID))).
		Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(tableName),
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

func scanByOwner(
	ctx context.Context,
	client *dynamodb.Client,
	tableName, ownerID string,
	logger *zap.Logger,
) ([]map[string]types.AttributeValue, error) {
	logger.Warn("owner listing falling back to full-table scan; configure the owner index",
		zap.String("table", tableName),
	)

	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("userId").Equal(expression.Value(ownerID))).
		Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(tableName),
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
