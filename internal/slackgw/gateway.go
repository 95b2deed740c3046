// Package slackgw implements the outbound messaging gateway on the Slack Web
// API. Sends are retried with bounded exponential backoff; delivery stays
// at-least-once and callers must tolerate repeats.
package slackgw

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/slack-go/slack"
	"github.com/syncfield/standup-bot/internal/domain/contract"
)

const maxRetryElapsed = 20 * time.Second

type Gateway struct {
	client *slack.Client
}

func New(client *slack.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed
	return policy
}

// SendToChannel posts to the shared channel and returns "channel:timestamp"
// as the message ref.
func (g *Gateway) SendToChannel(channelRef string, content contract.MessageContent) (string, error) {
	var ref string

	operation := func() error {
		channel, ts, err := g.client.PostMessage(
			channelRef,
			slack.MsgOptionText(content.Text, false),
			slack.MsgOptionAsUser(false),
		)
		if err != nil {
			return err
		}
		ref = channel + ":" + ts
		return nil
	}

	if err := backoff.Retry(operation, g.retryPolicy()); err != nil {
		return "", fmt.Errorf("failed to post to channel %s: %w", channelRef, err)
	}

	return ref, nil
}

// SendDirect opens (or reuses) the IM conversation with the member and posts
// into it.
func (g *Gateway) SendDirect(memberRef string, content contract.MessageContent) (string, error) {
	var ref string

	operation := func() error {
		conversation, _, _, err := g.client.OpenConversation(&slack.OpenConversationParameters{
			Users: []string{memberRef},
		})
		if err != nil {
			return err
		}

		channel, ts, err := g.client.PostMessage(
			conversation.ID,
			slack.MsgOptionText(content.Text, false),
			slack.MsgOptionAsUser(false),
		)
		if err != nil {
			return err
		}
		ref = channel + ":" + ts
		return nil
	}

	if err := backoff.Retry(operation, g.retryPolicy()); err != nil {
		return "", fmt.Errorf("failed to send direct message to %s: %w", memberRef, err)
	}

	return ref, nil
}

func (g *Gateway) ValidateChannelAccess(channelRef string) error {
	_, err := g.client.GetConversationInfo(&slack.GetConversationInfoInput{
		ChannelID: channelRef,
	})
	if err != nil {
		return fmt.Errorf("cannot access channel %s: %w", channelRef, err)
	}
	return nil
}

func (g *Gateway) LookupDisplayName(memberRef string) (string, error) {
	userInfo, err := g.client.GetUserInfo(memberRef)
	if err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}

	displayName := userInfo.Profile.RealName
	if displayName == "" {
		displayName = userInfo.Profile.DisplayName
	}
	if displayName == "" {
		displayName = userInfo.Name
	}

	return displayName, nil
}
