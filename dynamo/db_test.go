package dynamo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	container "github.com/testcontainers/testcontainers-go/modules/dynamodb"
)

// Every test gets its own table on a shared local dynamo, so tests never see
// each other's profiles.
var (
	localDynamo  *container.DynamoDBContainer
	dynamoClient *dynamodb.Client
)

func TestMain(m *testing.M) {
	code, err := runWithLocalDynamo(m)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(code)
}

func runWithLocalDynamo(m *testing.M) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	endpoint := "http://localhost:8000"
	if _, inCI := os.LookupEnv("TEST_IN_CI"); !inCI {
		var err error
		localDynamo, err = container.Run(ctx, "amazon/dynamodb-local")
		if err != nil {
			return 0, fmt.Errorf("error starting dynamo testcontainer: %w", err)
		}
		defer func() {
			if err := localDynamo.Terminate(context.Background()); err != nil {
				fmt.Printf("error terminating dynamo testcontainer: %s\n", err)
			}
		}()

		hostPort, err := localDynamo.Endpoint(ctx, "")
		if err != nil {
			return 0, fmt.Errorf("failed to get endpoint: %w", err)
		}
		endpoint = "http://" + hostPort
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("localhost"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	if err != nil {
		return 0, fmt.Errorf("aws config error: %w", err)
	}

	dynamoClient = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return m.Run(), nil
}

// newTestDB creates a fresh credentials table and drops it when t ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	table := "regctl-credentials-" + uuid.NewString()
	_, err := dynamoClient.CreateTable(ctx, credentialsTableInput(table))
	require.NoError(t, err, "failed to create table")

	t.Cleanup(func() {
		_, err := dynamoClient.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
			TableName: aws.String(table),
		})
		if err != nil {
			t.Logf("failed to delete table %s: %s", table, err)
		}
	})

	return NewDB(dynamoClient, table, WithCallTimeout(5*time.Second))
}

func credentialsTableInput(table string) *dynamodb.CreateTableInput {
	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		}
	}
	keySchema := func(hash, rng string) []types.KeySchemaElement {
		return []types.KeySchemaElement{
			{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange},
		}
	}

	return &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttr("PK"),
			stringAttr("SK"),
			stringAttr("GSI1PK"),
			stringAttr("GSI1SK"),
		},
		KeySchema: keySchema("PK", "SK"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName:  aws.String(gsi1),
				KeySchema:  keySchema("GSI1PK", "GSI1SK"),
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	}
}
