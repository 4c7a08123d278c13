// Package dynamo stores wake sessions in a DynamoDB table keyed by
// (userId HASH, date RANGE).
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"example.com/riserite/internal/domain"
)

const (
	attrUserID = "userId"
	attrDate   = "date"
)

// API is the subset of the DynamoDB client used by the repository.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type sessionItem struct {
	UserID          string         `dynamodbav:"userId"`
	Date            string         `dynamodbav:"date"`
	PushupCount     int            `dynamodbav:"pushupCount"`
	BrushingSeconds int            `dynamodbav:"brushingSeconds"`
	WakeCompleted   completionFlag `dynamodbav:"wakeCompleted"`
	MotivationTrack string         `dynamodbav:"motivationTrack,omitempty"`
	Timestamp       int64          `dynamodbav:"timestamp"`
}

func itemFromRecord(r domain.SessionRecord) sessionItem {
	return sessionItem{
		UserID:          r.UserID,
		Date:            r.Date,
		PushupCount:     r.PushupCount,
		BrushingSeconds: r.BrushingSeconds,
		WakeCompleted:   completionFlag(r.WakeCompleted),
		MotivationTrack: r.MotivationTrack,
		Timestamp:       r.Timestamp,
	}
}

func (i sessionItem) record() domain.SessionRecord {
	return domain.SessionRecord{
		UserID:          i.UserID,
		Date:            i.Date,
		PushupCount:     i.PushupCount,
		BrushingSeconds: i.BrushingSeconds,
		WakeCompleted:   domain.CompletionFlag(i.WakeCompleted),
		MotivationTrack: i.MotivationTrack,
		Timestamp:       i.Timestamp,
	}
}

// completionFlag is written as a number. Items written by other clients may
// carry a BOOL or a string, so reads accept those too. Any non-empty string
// counts as completed, including "0" and "false".
type completionFlag int

func (f completionFlag) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(int(f))}, nil
}

func (f *completionFlag) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return fmt.Errorf("wakeCompleted: %w", err)
		}
		*f = boolFlag(n != 0)
	case *types.AttributeValueMemberBOOL:
		*f = boolFlag(v.Value)
	case *types.AttributeValueMemberS:
		*f = boolFlag(v.Value != "")
	case *types.AttributeValueMemberNULL:
		*f = 0
	default:
		return fmt.Errorf("wakeCompleted: unsupported attribute type %T", av)
	}
	return nil
}

func boolFlag(b bool) completionFlag {
	return completionFlag(domain.FlagFromBool(b))
}

// Repository implements domain.SessionRepository on DynamoDB.
type Repository struct {
	client API
	table  string
	logger *log.Logger
}

// Option configures the Repository.
type Option func(*Repository)

// WithLogger overrides the logger used to report undecodable items.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository constructs a Repository for the named table.
func NewRepository(client API, table string, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		table:  table,
		logger: log.New(log.Writer(), "[dynamo] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the configured table name.
func (r *Repository) Table() string {
	return r.table
}

// Put writes the full item, replacing any existing item with the same key.
func (r *Repository) Put(ctx context.Context, record domain.SessionRecord) error {
	item, err := attributevalue.MarshalMap(itemFromRecord(record))
	if err != nil {
		return fmt.Errorf("marshal wake session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put wake session: %w", err)
	}
	return nil
}

// Get fetches a single item by key.
func (r *Repository) Get(ctx context.Context, userID, date string) (*domain.SessionRecord, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(userID, date),
	})
	if err != nil {
		return nil, fmt.Errorf("get wake session: %w", err)
	}
	if resp.Item == nil {
		return nil, nil
	}
	record, err := decodeItem(resp.Item)
	if err != nil {
		return nil, fmt.Errorf("unmarshal wake session: %w", err)
	}
	return &record, nil
}

// ListRecent queries the user's partition newest first.
func (r *Repository) ListRecent(ctx context.Context, userID, before string, limit int) ([]domain.SessionRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	if before != "" {
		// date is a reserved word in key condition expressions.
		input.KeyConditionExpression = aws.String("userId = :uid AND #d < :before")
		input.ExpressionAttributeNames = map[string]string{"#d": attrDate}
		input.ExpressionAttributeValues[":before"] = &types.AttributeValueMemberS{Value: before}
	}

	resp, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query wake sessions: %w", err)
	}

	records := make([]domain.SessionRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		record, err := decodeItem(item)
		if err != nil {
			// Keep the key and flag so a single odd attribute does not hide a day.
			r.logger.Printf("decode wake session item: %v", err)
			record = decodeKeys(item)
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes an item by key.
func (r *Repository) Delete(ctx context.Context, userID, date string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       keyOf(userID, date),
	})
	if err != nil {
		return fmt.Errorf("delete wake session: %w", err)
	}
	return nil
}

// VerifyTable describes the table and checks its key schema.
func (r *Repository) VerifyTable(ctx context.Context) (domain.TableReport, error) {
	report := domain.TableReport{Name: r.table}
	resp, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			report.Problems = append(report.Problems, "table does not exist")
			return report, nil
		}
		return report, fmt.Errorf("describe table: %w", err)
	}

	table := resp.Table
	if table == nil {
		report.Problems = append(report.Problems, "describe table returned no description")
		return report, nil
	}
	report.Status = string(table.TableStatus)

	attrTypes := make(map[string]types.ScalarAttributeType, len(table.AttributeDefinitions))
	for _, def := range table.AttributeDefinitions {
		attrTypes[aws.ToString(def.AttributeName)] = def.AttributeType
	}
	for _, k := range table.KeySchema {
		name := aws.ToString(k.AttributeName)
		switch k.KeyType {
		case types.KeyTypeHash:
			report.PartitionKey = name
		case types.KeyTypeRange:
			report.SortKey = name
		}
	}

	if report.PartitionKey != attrUserID {
		report.Problems = append(report.Problems, fmt.Sprintf("partition key is %q, want %q", report.PartitionKey, attrUserID))
	} else if attrTypes[attrUserID] != types.ScalarAttributeTypeS {
		report.Problems = append(report.Problems, "partition key userId must be a string")
	}
	if report.SortKey != attrDate {
		report.Problems = append(report.Problems, fmt.Sprintf("sort key is %q, want %q", report.SortKey, attrDate))
	} else if attrTypes[attrDate] != types.ScalarAttributeTypeS {
		report.Problems = append(report.Problems, "sort key date must be a string")
	}
	return report, nil
}

// CreateTable provisions the table with on-demand billing. An existing table is left untouched.
func (r *Repository) CreateTable(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrDate), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrDate), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func keyOf(userID, date string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: userID},
		attrDate:   &types.AttributeValueMemberS{Value: date},
	}
}

func decodeItem(item map[string]types.AttributeValue) (domain.SessionRecord, error) {
	var si sessionItem
	if err := attributevalue.UnmarshalMap(item, &si); err != nil {
		return domain.SessionRecord{}, err
	}
	return si.record(), nil
}

func decodeKeys(item map[string]types.AttributeValue) domain.SessionRecord {
	var record domain.SessionRecord
	if v, ok := item[attrUserID].(*types.AttributeValueMemberS); ok {
		record.UserID = v.Value
	}
	if v, ok := item[attrDate].(*types.AttributeValueMemberS); ok {
		record.Date = v.Value
	}
	if av, ok := item["wakeCompleted"]; ok {
		var flag completionFlag
		if err := flag.UnmarshalDynamoDBAttributeValue(av); err == nil {
			record.WakeCompleted = domain.CompletionFlag(flag)
		}
	}
	return record
}
