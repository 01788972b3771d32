package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/International-Combat-Archery-Alliance/registration-client/credstore"
	"github.com/International-Combat-Archery-Alliance/registration-client/slices"
)

const (
	credentialEntityName = "CREDENTIAL"
	profileEntityName    = "PROFILE"
)

type credentialDynamo struct {
	PK         string
	SK         string
	GSI1PK     string
	GSI1SK     string
	Version    int
	Profile    string
	Credential string
	SavedAt    time.Time
}

func credentialPK(profile string) string {
	return fmt.Sprintf("%s#%s", profileEntityName, profile)
}

func credentialSK() string {
	return credentialEntityName
}

func credentialKey(profile string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: credentialPK(profile)},
		"SK": &types.AttributeValueMemberS{Value: credentialSK()},
	}
}

var _ credstore.Store = (*CredentialStore)(nil)

// CredentialStore is the credstore.Store view of one profile's row.
type CredentialStore struct {
	db      *DB
	profile string
}

func (d *DB) CredentialStore(profile string) *CredentialStore {
	return &CredentialStore{db: d, profile: profile}
}

func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	item, ok, err := s.db.getCredential(ctx, s.profile)
	if err != nil {
		return "", err
	}
	if !ok || item.Credential == "" {
		return "", credstore.NewNoCredentialError(fmt.Sprintf("no credential for profile %q", s.profile))
	}
	return item.Credential, nil
}

func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	existing, ok, err := s.db.getCredential(ctx, s.profile)
	if err != nil {
		return err
	}

	version := 1
	if ok {
		version = existing.Version + 1
	}

	return s.db.putCredential(ctx, credentialDynamo{
		PK:         credentialPK(s.profile),
		SK:         credentialSK(),
		GSI1PK:     credentialEntityName,
		GSI1SK:     credentialPK(s.profile),
		Version:    version,
		Profile:    s.profile,
		Credential: credential,
		SavedAt:    time.Now().UTC(),
	})
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	ctx, cancel := s.db.withTimeout(ctx)
	defer cancel()

	_, err := s.db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.db.table),
		Key:       credentialKey(s.profile),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return credstore.NewTimeoutError("Clear credential timed out")
		}
		return credstore.NewFailedToClearError(fmt.Sprintf("Failed to delete credential for profile %q", s.profile), err)
	}
	return nil
}

func (d *DB) getCredential(ctx context.Context, profile string) (credentialDynamo, bool, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	resp, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            credentialKey(profile),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return credentialDynamo{}, false, credstore.NewTimeoutError("Load credential timed out")
		}
		return credentialDynamo{}, false, credstore.NewFailedToLoadError(fmt.Sprintf("Failed to fetch credential for profile %q", profile), err)
	}

	if len(resp.Item) == 0 {
		return credentialDynamo{}, false, nil
	}

	var item credentialDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &item)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal credential from DB: %s", err))
	}
	return item, true, nil
}

func (d *DB) putCredential(ctx context.Context, item credentialDynamo) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return credstore.NewFailedToSaveError("Failed to convert credential to dynamo model", err)
	}

	expr := mustBuild(expression.NewBuilder().WithCondition(versionCondition(item.Version)))

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.table),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return credstore.NewVersionConflictError(fmt.Sprintf("Credential for profile %q was changed concurrently", item.Profile), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return credstore.NewTimeoutError("Save credential timed out")
		} else {
			return credstore.NewFailedToSaveError("Failed PutItem call", err)
		}
	}

	return nil
}

// ListProfiles pages through every profile with a saved credential, in name
// order.
func (d *DB) ListProfiles(ctx context.Context, limit int32, cursor *string) (credstore.ListProfilesResponse, error) {
	if limit < 1 {
		limit = 1
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(credentialEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(profileEntityName))

	expr := mustBuild(expression.NewBuilder().WithKeyCondition(keyCond))

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		var err error
		startKey, err = decodeCursor(*cursor)
		if err != nil {
			return credstore.ListProfilesResponse{}, credstore.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1),
		TableName:                 aws.String(d.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return credstore.ListProfilesResponse{}, credstore.NewTimeoutError("ListProfiles timed out")
		}
		return credstore.ListProfilesResponse{}, credstore.NewFailedToLoadError("Failed to fetch profiles from dynamo", err)
	}

	var dynamoItems []credentialDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo credentials: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// The extra row fetched to detect a next page is not handed out, so
		// the page ends on the row before it.
		lastShown := result.Items[int(limit)-1]
		c, err := encodeCursor(pageKeyOf(result.LastEvaluatedKey, lastShown))
		if err != nil {
			panic(fmt.Sprintf("failed to make page cursor: %s", err))
		}
		newCursor = &c
	}

	return credstore.ListProfilesResponse{
		Data: slices.Map(dynamoItems, func(v credentialDynamo) credstore.Profile {
			return credstore.Profile{Name: v.Profile, SavedAt: v.SavedAt}
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
