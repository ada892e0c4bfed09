package clients

import (
	"encoding/json"
	"fmt"
	"time"
)

// SlackItemRef identifies a message for reaction operations
type SlackItemRef struct {
	Channel   string
	Timestamp string
}

// SlackPostMessageResponse is the channel and timestamp of a posted message
type SlackPostMessageResponse struct {
	Channel   string
	Timestamp string
}

// SlackMessage is a message fetched from channel history
type SlackMessage struct {
	User     string
	BotID    string
	Text     string
	TS       string
	ThreadTS string
}

// CRMSession is an authenticated Salesforce session
type CRMSession struct {
	AccessToken string
	InstanceURL string
	IssuedAt    time.Time
}

// CRMQueryResult is the response of a SOQL query; records stay raw until decoded by the caller
type CRMQueryResult struct {
	TotalSize int               `json:"totalSize"`
	Done      bool              `json:"done"`
	Records   []json.RawMessage `json:"records"`
}

// DecodeRecords decodes raw CRM records into typed records
func DecodeRecords[T any](records []json.RawMessage) ([]T, error) {
	decoded := make([]T, 0, len(records))
	for i, raw := range records {
		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		decoded = append(decoded, record)
	}
	return decoded, nil
}
