package dynamo

// DynamoDB attribute and index names shared by the repos and Bootstrap.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrUserID         = "user_id"
	attrEmail          = "email"
	attrNotificationID = "notification_id"
	attrIsRead         = "is_read"
	attrReadAt         = "read_at"
	attrDeletedAt      = "deleted_at"
	attrUpdatedAt      = "updated_at"

	indexEmail      = "email-index"
	indexUserNotifs = "user_id-notification_id-index"
)
