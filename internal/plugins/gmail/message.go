package gmail

import (
	"encoding/base64"
	"net/mail"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// maxBodyChars bounds the stored email body; subjects and the leading
// body text carry nearly all of the retrieval signal.
const maxBodyChars = 2000

// MessageToItem converts a full-format Gmail message to a raw item.
// The message ID is the stable source identifier.
func MessageToItem(msg *gmail.Message) domain.RawItem {
	headers := headerMap(msg)
	subject := headers["Subject"]
	from := headers["From"]

	body := extractBody(msg.Payload)
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}

	return domain.RawItem{
		SourceID: msg.Id,
		ItemType: "email",
		Title:    subject,
		Content:  "From: " + from + "\n\n" + body,
		Metadata: map[string]any{
			"from":      from,
			"to":        headers["To"],
			"date":      headers["Date"],
			"thread_id": msg.ThreadId,
			"labels":    msg.LabelIds,
		},
		SourceTimestamp: messageTime(msg, headers["Date"]),
	}
}

// headerMap flattens the payload headers into a name-to-value map.
func headerMap(msg *gmail.Message) map[string]string {
	headers := make(map[string]string)
	if msg.Payload == nil {
		return headers
	}
	for _, h := range msg.Payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

// extractBody returns the first text/plain part's decoded content.
// Multipart messages are searched one level deep, matching how Gmail
// structures plain-text alternatives.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			if body := decodeBody(part.Body.Data); body != "" {
				return body
			}
		}
	}

	if payload.Body != nil {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

// decodeBody decodes Gmail's base64url body encoding, tolerating both
// padded and unpadded forms.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	if raw, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(raw)
	}
	if raw, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(raw)
	}
	return ""
}

// messageTime resolves the message's own timestamp: the Date header
// when parseable, otherwise Gmail's internal receive time.
func messageTime(msg *gmail.Message, dateHeader string) time.Time {
	if dateHeader != "" {
		if ts, err := mail.ParseDate(dateHeader); err == nil {
			return ts
		}
	}
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate).UTC()
	}
	return time.Time{}
}
