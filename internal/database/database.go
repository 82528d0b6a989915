package database

import (
	"chat-app-agent/internal/env"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ItemAPI is the part of the DynamoDB client used for single-item access.
type ItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Endpoint     string
}

func ConfigFromEnv() Config {
	return Config{
		Region:       env.Get(env.AWSRegion),
		AccessKey:    env.Get(env.AWSID),
		SecretKey:    env.Get(env.AWSSecret),
		SessionToken: env.Get(env.AWSToken),
		Endpoint:     env.Get(env.DynamoDBEndpoint),
	}
}

type DynamoDBClient struct {
	svc ItemAPI
}

func NewDynamoDBClient(ctx context.Context, cfg Config) (*DynamoDBClient, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &DynamoDBClient{
		svc: dynamodb.NewFromConfig(awsCfg, clientOpts...),
	}, nil
}

// NewDynamoDBClientWithAPI wraps an existing item API, used by tests.
func NewDynamoDBClientWithAPI(api ItemAPI) *DynamoDBClient {
	return &DynamoDBClient{svc: api}
}

type Database struct {
	Client *DynamoDBClient
}

func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dbClient, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init dynamodb client: %w", err)
	}

	return &Database{
		Client: dbClient,
	}, nil
}
