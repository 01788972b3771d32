package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

var _ Store = (*SSMStore)(nil)

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// SSMStore keeps the credential in a SecureString SSM parameter.
type SSMStore struct {
	client SSMClient
	name   string
}

func NewSSMStore(client SSMClient, parameterName string) *SSMStore {
	return &SSMStore{
		client: client,
		name:   parameterName,
	}
}

func (s *SSMStore) Load(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", NewNoCredentialError(fmt.Sprintf("no parameter %q", s.name))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewTimeoutError("loading credential from SSM timed out")
		}
		return "", NewFailedToLoadError(fmt.Sprintf("failed to get parameter %q", s.name), err)
	}

	if resp.Parameter == nil || aws.ToString(resp.Parameter.Value) == "" {
		return "", NewNoCredentialError(fmt.Sprintf("parameter %q is empty", s.name))
	}
	return aws.ToString(resp.Parameter.Value), nil
}

func (s *SSMStore) Save(ctx context.Context, credential string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.name),
		Value:     aws.String(credential),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewTimeoutError("saving credential to SSM timed out")
		}
		return NewFailedToSaveError(fmt.Sprintf("failed to put parameter %q", s.name), err)
	}
	return nil
}

func (s *SSMStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{
		Name: aws.String(s.name),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return NewFailedToClearError(fmt.Sprintf("failed to delete parameter %q", s.name), err)
	}
	return nil
}
