package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts the result list of completed matches to a Slack channel.
// Other events are ignored.
type Notifier struct {
	api       slackClient
	channelID string
	dryRun    bool
}

// NewNotifier creates a new Notifier. In dry-run mode messages are logged instead of posted.
func NewNotifier(token, channelID string, dryRun bool) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		dryRun:    dryRun,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, dryRun bool) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		dryRun:    dryRun,
	}
}

func (s *Notifier) Notify(ctx context.Context, event notifier.Event) error {
	if event.Kind != notifier.MatchCompleted {
		return nil
	}
	payload, ok := event.Payload.(notifier.CompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Kind)
	}
	_, _, err := s.sendMessage(ctx, formatResult(payload))
	return err
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message) (string, string, error) {
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// formatResult creates a Slack message with the final standings of a match.
func formatResult(payload notifier.CompletedPayload) slack.Message {
	blocks := make([]slack.Block, 0)
	m := payload.Match

	headerText := slack.NewTextBlockObject("plain_text", "🎯 Training match finished! 🎯", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	title := m.Code
	if m.Name != "" {
		title = fmt.Sprintf("%s (%s)", m.Name, m.Code)
	}
	loc, err := time.LoadLocation("Europe/Stockholm")
	start := m.EffectiveStart()
	if err == nil {
		start = start.In(loc)
	}
	detailsText := fmt.Sprintf("%s, class %s, %s", title, m.WeaponClass, start.Format("Monday 02 Jan, 15:04"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	if len(payload.Standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No scores reported.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	lines := make([]string, 0, len(payload.Standings))
	for _, st := range payload.Standings {
		var medal string
		switch st.Rank {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}
		line := fmt.Sprintf("%d. %s%s: %d (%d series)", st.Rank, medal, st.DisplayName, st.Score, st.SeriesCount)
		if st.FinalScore != nil {
			line += fmt.Sprintf(" | with handicap %.2f", *st.FinalScore)
		}
		lines = append(lines, line)
	}
	resultText := "Result:\n" + strings.Join(lines, "\n")
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
