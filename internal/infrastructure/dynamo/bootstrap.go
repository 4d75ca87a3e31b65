package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notify-api/internal/config"
	"github.com/rs/zerolog"
)

// Bootstrap creates the users and notifications tables and their GSIs.
// Tables that already exist are skipped.
func Bootstrap(ctx context.Context, client API, tables config.DynamoTables, log zerolog.Logger) error {
	inputs := []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(tables.Users),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(attrEmail), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexEmail, attrEmail, ""),
			},
		},
		{
			TableName:   aws.String(tables.Notifications),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(attrNotificationID), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(attrNotificationID), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUserNotifs, attrUserID, attrNotificationID),
			},
		},
	}
	for _, in := range inputs {
		if err := createTable(ctx, client, in, log); err != nil {
			return err
		}
	}
	return nil
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client API, input *dynamodb.CreateTableInput, log zerolog.Logger) error {
	table := aws.ToString(input.TableName)
	_, err := client.CreateTable(ctx, input)
	var riue *types.ResourceInUseException
	switch {
	case errors.As(err, &riue):
		log.Debug().Str("table", table).Msg("table exists")
	case err != nil:
		return fmt.Errorf("create table %s: %w", table, err)
	default:
		log.Info().Str("table", table).Msg("created table")
	}
	return nil
}
