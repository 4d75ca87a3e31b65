package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notify-api/internal/domain"
)

// Condition shared by every single-item mutation: the caller owns the record
// and it has not been soft-deleted.
const ownedLive = attrUserID + " = :uid AND attribute_not_exists(" + attrDeletedAt + ")"

// NotificationRepo provides typed DynamoDB operations for the notifications table.
// Listing reads the user_id-notification_id GSI in descending order; ids are
// ULIDs, so that is newest first.
type NotificationRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{
		client:    client,
		tableName: tableName,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + attrNotificationID + ")"),
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("put notification: %w", err)
	}
	out := *n
	return &out, nil
}

func (r *NotificationRepo) FindByID(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrNotificationID, notificationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if out.Item == nil {
		return nil, notFound()
	}
	n, err := unmarshalNotification(out.Item)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID || n.DeletedAt != nil {
		return nil, notFound()
	}
	return n, nil
}

// FindPaginated walks the user's partition in order, counting every match and
// keeping the ones that fall inside the requested page.
func (r *NotificationRepo) FindPaginated(ctx context.Context, userID string, opts domain.ListOptions) (*domain.NotificationPage, error) {
	filter := "attribute_not_exists(" + attrDeletedAt + ")"
	values := map[string]types.AttributeValue{":uid": str(userID)}
	if opts.IsRead != nil {
		filter += " AND " + attrIsRead + " = :r"
		values[":r"] = boolean(*opts.IsRead)
	}

	skip, limit := opts.Skip(), opts.Limit
	items := make([]domain.Notification, 0, limit)
	var total int64

	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUserNotifs),
		KeyConditionExpression:    aws.String(attrUserID + " = :uid"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query notifications: %w", err)
		}
		for _, item := range page.Items {
			if total >= int64(skip) && len(items) < limit {
				n, err := unmarshalNotification(item)
				if err != nil {
					return nil, err
				}
				items = append(items, *n)
			}
			total++
		}
	}
	return &domain.NotificationPage{
		Notifications: items,
		Pagination:    domain.NewPagination(total, opts.Page, opts.Limit),
	}, nil
}

func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	now := r.now()
	return r.updateOwned(ctx, notificationID, userID, map[string]interface{}{
		attrIsRead:    true,
		attrReadAt:    now,
		attrUpdatedAt: now,
	})
}

// MarkAllAsRead flips every unread record one conditional update at a time.
// Records changed concurrently fail the condition and are not counted.
func (r *NotificationRepo) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	ids, err := r.unreadIDs(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := r.now()
	ue, err := buildUpdateExpr(map[string]interface{}{
		attrIsRead:    true,
		attrReadAt:    now,
		attrUpdatedAt: now,
	})
	if err != nil {
		return 0, err
	}
	values := ue.with(map[string]types.AttributeValue{
		":uid": str(userID),
		":f":   boolean(false),
	})

	var modified int64
	for _, id := range ids {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey(attrNotificationID, id),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String(ownedLive + " AND " + attrIsRead + " = :f"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: values,
		})
		if isConditionFailed(err) {
			continue
		}
		if err != nil {
			return modified, fmt.Errorf("mark %s read: %w", id, err)
		}
		modified++
	}
	return modified, nil
}

func (r *NotificationRepo) SoftDelete(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	now := r.now()
	return r.updateOwned(ctx, notificationID, userID, map[string]interface{}{
		attrDeletedAt: now,
		attrUpdatedAt: now,
	})
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	p := dynamodb.NewQueryPaginator(r.client, r.unreadQuery(userID, types.SelectCount))
	var total int64
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("count unread: %w", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func (r *NotificationRepo) unreadIDs(ctx context.Context, userID string) ([]string, error) {
	in := r.unreadQuery(userID, types.SelectSpecificAttributes)
	in.ProjectionExpression = aws.String(attrNotificationID)

	var ids []string
	p := dynamodb.NewQueryPaginator(r.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query unread: %w", err)
		}
		for _, item := range page.Items {
			if v, ok := item[attrNotificationID].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
	}
	return ids, nil
}

func (r *NotificationRepo) unreadQuery(userID string, sel types.Select) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserNotifs),
		KeyConditionExpression: aws.String(attrUserID + " = :uid"),
		FilterExpression:       aws.String(attrIsRead + " = :f AND attribute_not_exists(" + attrDeletedAt + ")"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": str(userID),
			":f":   boolean(false),
		},
		Select: sel,
	}
}

// updateOwned applies updates only when the record exists, belongs to userID
// and is live, returning the new image.
func (r *NotificationRepo) updateOwned(ctx context.Context, notificationID, userID string, updates map[string]interface{}) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrNotificationID, notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(ownedLive),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.with(map[string]types.AttributeValue{":uid": str(userID)}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	return unmarshalNotification(out.Attributes)
}

func unmarshalNotification(item map[string]types.AttributeValue) (*domain.Notification, error) {
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(item, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return &n, nil
}

func notFound() error {
	return fmt.Errorf("notification not found: %w", domain.ErrNotFound)
}
