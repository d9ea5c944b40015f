// Package dynamo stores the validation record in a DynamoDB table whose
// partition key is container_id.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hamed0406/timewatch/internal/domain"
)

// API is the part of *dynamodb.Client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type Store struct {
	client API
	table  string
}

func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

// item is the table layout; status is kept as its name.
type item struct {
	ContainerID string `dynamodbav:"container_id"`
	FetchedTime string `dynamodbav:"fetched_time"`
	LastChecked string `dynamodbav:"last_checked"`
	Status      string `dynamodbav:"status"`
}

func (s *Store) Put(ctx context.Context, rec domain.ValidationRecord) error {
	av, err := attributevalue.MarshalMap(item{
		ContainerID: rec.RecordID,
		FetchedTime: rec.FetchedTime,
		LastChecked: rec.LastChecked,
		Status:      rec.Status.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ValidationRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"container_id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if it.FetchedTime == "" {
		it.FetchedTime = domain.FetchedNA
	}
	return &domain.ValidationRecord{
		RecordID:    it.ContainerID,
		FetchedTime: it.FetchedTime,
		LastChecked: it.LastChecked,
		Status:      domain.ParseStatus(it.Status),
	}, nil
}
