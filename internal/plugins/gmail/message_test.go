package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func testMessage() *gmail.Message {
	body := base64.URLEncoding.EncodeToString([]byte("Hello there,\n\nmeeting moved to Thursday."))
	return &gmail.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		LabelIds:     []string{"INBOX"},
		InternalDate: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Schedule change"},
				{Name: "From", Value: "Ada <ada@example.com>"},
				{Name: "To", Value: "me@example.com"},
				{Name: "Date", Value: "Sun, 01 Mar 2026 10:00:00 +0100"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: "ignored"}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{
					Data: base64.URLEncoding.EncodeToString([]byte("Hello there,\n\nmeeting moved to Thursday.")),
				}},
			},
			Body: &gmail.MessagePartBody{Data: body},
		},
	}
}

func TestMessageToItem(t *testing.T) {
	item := MessageToItem(testMessage())

	assert.Equal(t, "msg-1", item.SourceID)
	assert.Equal(t, "email", item.ItemType)
	assert.Equal(t, "Schedule change", item.Title)
	assert.Contains(t, item.Content, "From: Ada <ada@example.com>")
	assert.Contains(t, item.Content, "meeting moved to Thursday")
	assert.Equal(t, "thread-1", item.Metadata["thread_id"])
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), item.SourceTimestamp.UTC())
}

func TestMessageToItem_FallsBackToInternalDate(t *testing.T) {
	msg := testMessage()
	msg.Payload.Headers = []*gmail.MessagePartHeader{
		{Name: "Subject", Value: "No date header"},
	}

	item := MessageToItem(msg)

	assert.Equal(t, time.UnixMilli(msg.InternalDate).UTC(), item.SourceTimestamp)
}

func TestMessageToItem_SinglePartBody(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{{Name: "Subject", Value: "Plain"}},
			Body: &gmail.MessagePartBody{
				Data: base64.RawURLEncoding.EncodeToString([]byte("single part body")),
			},
		},
	}

	item := MessageToItem(msg)

	assert.Contains(t, item.Content, "single part body")
}

func TestMessageToItem_TruncatesLongBody(t *testing.T) {
	long := make([]byte, maxBodyChars+500)
	for i := range long {
		long[i] = 'x'
	}
	msg := testMessage()
	msg.Payload.Parts = []*gmail.MessagePart{
		{MimeType: "text/plain", Body: &gmail.MessagePartBody{
			Data: base64.URLEncoding.EncodeToString(long),
		}},
	}

	item := MessageToItem(msg)

	require.LessOrEqual(t, len(item.Content), maxBodyChars+len("From: Ada <ada@example.com>\n\n"))
}

func TestExtractBody_UndecodableData(t *testing.T) {
	payload := &gmail.MessagePart{
		Body: &gmail.MessagePartBody{Data: "%%not-base64%%"},
	}

	assert.Empty(t, extractBody(payload))
}
