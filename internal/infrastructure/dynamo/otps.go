package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mbuddy-api/internal/domain"
)

// OTPRepo provides typed DynamoDB operations for the otps table.
// Rows are write-once: issuance inserts, verification reads and deletes,
// the table's TTL index removes whatever expires unverified.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByEmail queries the email-created_at GSI newest-first. Expired rows
// that DynamoDB TTL has not yet swept may still be returned; callers must
// apply the expires_at check themselves.
func (r *OTPRepo) ListByEmail(ctx context.Context, email string) ([]domain.OTP, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-created_at-index"),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		ScanIndexForward: aws.Bool(false), // created_at descending
	})
	if err != nil {
		return nil, err
	}
	var otps []domain.OTP
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &otps); err != nil {
		return nil, err
	}
	return otps, nil
}

func (r *OTPRepo) Delete(ctx context.Context, otpID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("otp_id", otpID),
	})
	return err
}
