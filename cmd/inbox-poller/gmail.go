package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// gmailMailbox reads a Gmail inbox through the users.messages API.
type gmailMailbox struct {
	svc   *gmail.Service
	query string
}

// newGmailMailbox authorizes against the OAuth desktop flow. The first run
// prints the consent URL and waits for the pasted code; the granted token is
// cached at tokenPath for subsequent runs.
func newGmailMailbox(ctx context.Context, credentialsPath, tokenPath, query string) (*gmailMailbox, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(raw, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		token, err = tokenFromConsent(ctx, oauthConfig)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, token); err != nil {
			return nil, err
		}
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &gmailMailbox{svc: svc, query: query}, nil
}

func (g *gmailMailbox) ListUnread(ctx context.Context) ([]Message, error) {
	listed, err := g.svc.Users.Messages.List("me").Q(g.query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]Message, 0, len(listed.Messages))
	for _, ref := range listed.Messages {
		full, err := g.svc.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}
		messages = append(messages, Message{
			ID:      ref.Id,
			From:    headerValue(full.Payload, "From"),
			Subject: headerValue(full.Payload, "Subject"),
			Body:    plainTextBody(full.Payload),
		})
	}
	return messages, nil
}

func (g *gmailMailbox) MarkRead(ctx context.Context, id string) error {
	_, err := g.svc.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return nil
}

func headerValue(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// plainTextBody picks the text/plain part, falling back to the top-level
// body for single-part messages.
func plainTextBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			return decodeBody(part.Body.Data)
		}
	}
	if payload.Body != nil {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromConsent(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Authorize this app by visiting this url:\n%s\n", authURL)
	fmt.Print("Enter the code from that page here: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, fmt.Errorf("read authorization code: %w", scanner.Err())
	}
	code := scanner.Text()

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}
