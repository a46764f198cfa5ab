package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

const defaultMaxAttempts = 3

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// configLoadFunc allows tests to replace config.LoadDefaultConfig
var configLoadFunc = config.LoadDefaultConfig

// VaultConfig selects the Secrets Manager account and endpoint
type VaultConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	MaxAttempts     int
}

// VaultClient reads and writes terminal secrets in AWS Secrets Manager.
// It does not retry on its own; the SDK retryer is the only retry policy.
type VaultClient struct {
	api secretsManagerAPI
}

// NewVaultClient wraps an existing Secrets Manager API
func NewVaultClient(api secretsManagerAPI) *VaultClient {
	return &VaultClient{api: api}
}

// NewVaultClientFromConfig loads the AWS configuration and builds the client
func NewVaultClientFromConfig(ctx context.Context, cfg VaultConfig) (*VaultClient, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	options := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(maxAttempts),
	}
	if cfg.Region != "" {
		options = append(options, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := configLoadFunc(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewVaultClient(api), nil
}

// Get reads a secret value, optionally pinned to a version id or stage
func (c *VaultClient) Get(ctx context.Context, in entities.GetSecretInput) (*entities.Secret, error) {
	if strings.TrimSpace(in.SecretID) == "" {
		return nil, domainerrors.FieldError("secretId", "secret id is required")
	}

	params := &secretsmanager.GetSecretValueInput{SecretId: aws.String(in.SecretID)}
	if in.VersionID != "" {
		params.VersionId = aws.String(in.VersionID)
	}
	if in.VersionStage != "" {
		params.VersionStage = aws.String(in.VersionStage)
	}

	out, err := c.api.GetSecretValue(ctx, params)
	if err != nil {
		return nil, mapVaultError("get secret", err)
	}

	secret := &entities.Secret{
		ARN:           aws.ToString(out.ARN),
		Name:          aws.ToString(out.Name),
		SecretString:  aws.ToString(out.SecretString),
		VersionID:     aws.ToString(out.VersionId),
		VersionStages: out.VersionStages,
	}
	if out.CreatedDate != nil {
		secret.CreatedAt = *out.CreatedDate
	}
	return secret, nil
}

// Create stores a new secret
func (c *VaultClient) Create(ctx context.Context, in entities.CreateSecretInput) (*entities.Secret, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "secret name is required"
	}
	if in.SecretString == "" {
		fields["secretString"] = "secret value is required"
	}
	if len(fields) > 0 {
		return nil, domainerrors.Validation("invalid secret", fields)
	}

	params := &secretsmanager.CreateSecretInput{
		Name:         aws.String(in.Name),
		SecretString: aws.String(in.SecretString),
	}
	if in.Description != "" {
		params.Description = aws.String(in.Description)
	}

	out, err := c.api.CreateSecret(ctx, params)
	if err != nil {
		return nil, mapVaultError("create secret", err)
	}
	return &entities.Secret{
		ARN:       aws.ToString(out.ARN),
		Name:      aws.ToString(out.Name),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// Update stores a new value, creating a new version
func (c *VaultClient) Update(ctx context.Context, in entities.UpdateSecretInput) (*entities.Secret, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.SecretID) == "" {
		fields["secretId"] = "secret id is required"
	}
	if in.SecretString == "" {
		fields["secretString"] = "secret value is required"
	}
	if len(fields) > 0 {
		return nil, domainerrors.Validation("invalid secret", fields)
	}

	params := &secretsmanager.UpdateSecretInput{
		SecretId:     aws.String(in.SecretID),
		SecretString: aws.String(in.SecretString),
	}
	if in.Description != "" {
		params.Description = aws.String(in.Description)
	}

	out, err := c.api.UpdateSecret(ctx, params)
	if err != nil {
		return nil, mapVaultError("update secret", err)
	}
	return &entities.Secret{
		ARN:       aws.ToString(out.ARN),
		Name:      aws.ToString(out.Name),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// List returns one page of secret summaries
func (c *VaultClient) List(ctx context.Context, in entities.ListSecretsInput) (*entities.SecretList, error) {
	params := &secretsmanager.ListSecretsInput{}
	if in.MaxResults > 0 {
		params.MaxResults = aws.Int32(in.MaxResults)
	}
	if in.NextToken != "" {
		params.NextToken = aws.String(in.NextToken)
	}

	out, err := c.api.ListSecrets(ctx, params)
	if err != nil {
		return nil, mapVaultError("list secrets", err)
	}

	list := &entities.SecretList{
		Secrets:   make([]entities.SecretSummary, 0, len(out.SecretList)),
		NextToken: aws.ToString(out.NextToken),
	}
	for _, e := range out.SecretList {
		list.Secrets = append(list.Secrets, entities.SecretSummary{
			ARN:         aws.ToString(e.ARN),
			Name:        aws.ToString(e.Name),
			Description: aws.ToString(e.Description),
			LastChanged: e.LastChangedDate,
		})
	}
	return list, nil
}

func mapVaultError(op string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return domainerrors.NotFound("secret not found")
	}
	return domainerrors.Transient("secret vault "+op+" failed", err)
}
