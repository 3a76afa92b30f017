package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "b1_t1", CompositeKey("b1", "t1"))
	assert.Equal(t, "c1_b1", CompositeKey("c1", "b1"))
}

// Each join table names its partition key after the pair it joins, so the
// primary key a store builds must use the attribute it was constructed with.
func TestRelationshipKeyUsesTableAttribute(t *testing.T) {
	bookTags := &RelationshipStore{keyAttr: BookTagKeyAttribute}
	key := bookTags.key("u1", "b1", "t1")
	require.Contains(t, key, BookTagKeyAttribute)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "b1_t1"}, key[BookTagKeyAttribute])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, key["userId"])

	collectionBooks := &RelationshipStore{keyAttr: CollectionBookKeyAttribute}
	key = collectionBooks.key("u1", "c1", "b1")
	require.Contains(t, key, CollectionBookKeyAttribute)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "c1_b1"}, key[CollectionBookKeyAttribute])
	assert.NotContains(t, key, BookTagKeyAttribute)
}
