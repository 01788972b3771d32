package main

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/International-Combat-Archery-Alliance/registration-client/config"
	"github.com/International-Combat-Archery-Alliance/registration-client/credstore"
	"github.com/International-Combat-Archery-Alliance/registration-client/dynamo"
)

func createFileCredentialStore(cfg config.Config) (*credstore.FileStore, error) {
	path := cfg.CredentialPath
	if path == "" {
		var err error
		path, err = credstore.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return credstore.NewFileStore(path), nil
}

func createSSMCredentialStore(ctx context.Context, cfg config.Config) (*credstore.SSMStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config: %w", err)
	}

	return credstore.NewSSMStore(ssm.NewFromConfig(awsCfg), cfg.SSMParameter), nil
}

func createDynamoDB(ctx context.Context, cfg config.Config) (*dynamo.DB, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config: %w", err)
	}

	return dynamo.NewDB(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil
}

// createCredentialStore picks where the sign-in credential is kept. The
// profile lister is only available with the dynamo backend.
func createCredentialStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (credstore.Store, profileLister, error) {
	logger.Debug("using credential backend", slog.String("backend", string(cfg.CredentialBackend)), slog.String("profile", cfg.Profile))

	switch cfg.CredentialBackend {
	case config.BACKEND_SSM:
		store, err := createSSMCredentialStore(ctx, cfg)
		return store, nil, err
	case config.BACKEND_DYNAMO:
		db, err := createDynamoDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return db.CredentialStore(cfg.Profile), db, nil
	default:
		store, err := createFileCredentialStore(cfg)
		return store, nil, err
	}
}
