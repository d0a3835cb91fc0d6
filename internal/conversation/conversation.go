package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/akozyrev/route-weather/internal/weather"
	"go.uber.org/zap"
)

const (
	msgWelcome = "Hi! I check the weather along a travel route.\n\n" +
		"I can:\n" +
		"Fetch the forecast for every point on your route.\n" +
		"Cover a chosen number of days and plot the results.\n" +
		"Use /help to see the available commands."

	msgHelp = "Available commands:\n" +
		"/start - Greeting and a summary of what I can do\n" +
		"/help - This list\n" +
		"/weather - Request a route weather forecast\n\n" +
		"Using /weather:\n" +
		"1. Enter the first city of the route.\n" +
		"2. Enter the last city of the route.\n" +
		"3. Enter the number of forecast days (1 or 5).\n" +
		"4. Optionally add intermediate cities."

	msgAskStart            = "Enter the first city (for example, Moscow):"
	msgAskEnd              = "Enter the last city (for example, Penza):"
	msgAskHorizon          = "Number of forecast days (1 or 5):"
	msgBadHorizon          = "Invalid input! The number of days will be 5."
	msgAskIntermediates    = "Add intermediate cities? (yes/no)"
	msgAskIntermediateList = "Enter intermediate cities separated by spaces (for example, Voronezh Ryazan Tula):"
	msgNoIntermediates     = "No intermediate cities added."
	msgNoSession           = "Use /weather to request a route forecast."
	msgFailure             = "Could not fetch weather data for the route."
)

// Aggregator is the slice of the weather service the dialogue needs.
type Aggregator interface {
	Aggregate(ctx context.Context, route weather.Route, horizon int) (weather.Dataset, []string, error)
}

// Manager drives the multi-step /weather dialogue for every chat session.
// All state lives in the Sessions store; the Manager itself is stateless and
// safe for concurrent use across sessions.
type Manager struct {
	sessions     *Sessions
	agg          Aggregator
	dashboardURL string
	log          *zap.SugaredLogger
}

func NewManager(sessions *Sessions, agg Aggregator, dashboardURL string, log *zap.SugaredLogger) *Manager {
	return &Manager{
		sessions:     sessions,
		agg:          agg,
		dashboardURL: dashboardURL,
		log:          log,
	}
}

// HandleMessage advances the sender's dialogue by one turn and returns the
// reply text. Commands are recognized in any state; /weather restarts the
// dialogue from the first step.
func (m *Manager) HandleMessage(ctx context.Context, sessionID, text string) string {
	text = strings.TrimSpace(text)

	switch strings.ToLower(text) {
	case "/start":
		return msgWelcome
	case "/help":
		return msgHelp
	case "/weather":
		m.sessions.begin(sessionID)
		return msgAskStart
	}

	sess, ok := m.sessions.get(sessionID)
	if !ok {
		return msgNoSession
	}

	switch sess.step {
	case StepAwaitingStart:
		if text == "" {
			return msgAskStart
		}
		sess.start = text
		sess.step = StepAwaitingEnd
		return msgAskEnd

	case StepAwaitingEnd:
		if text == "" {
			return msgAskEnd
		}
		sess.end = text
		sess.step = StepAwaitingHorizon
		return msgAskHorizon

	case StepAwaitingHorizon:
		days, err := strconv.Atoi(text)
		coerced := err != nil || weather.NormalizeHorizon(days) != days
		sess.horizon = weather.NormalizeHorizon(days)
		sess.step = StepAwaitingIntermediateChoice
		if coerced {
			return msgBadHorizon + "\n" + msgAskIntermediates
		}
		return msgAskIntermediates

	case StepAwaitingIntermediateChoice:
		switch strings.ToLower(text) {
		case "yes", "y":
			sess.step = StepAwaitingIntermediateCities
			return msgAskIntermediateList
		case "no", "n":
			return msgNoIntermediates + "\n" + m.finish(ctx, sessionID, sess)
		default:
			return msgAskIntermediates
		}

	case StepAwaitingIntermediateCities:
		sess.intermediates = strings.Fields(text)
		return m.finish(ctx, sessionID, sess)
	}

	return msgNoSession
}

// finish runs the aggregation for the collected route and clears the session,
// making the dialogue terminal regardless of outcome.
func (m *Manager) finish(ctx context.Context, sessionID string, sess *session) string {
	defer m.sessions.clear(sessionID)

	route := weather.Route{
		Start:         sess.start,
		Intermediates: sess.intermediates,
		End:           sess.end,
	}

	if _, _, err := m.agg.Aggregate(ctx, route, sess.horizon); err != nil {
		m.log.Warnw("route aggregation failed", "session", sessionID, "error", err)
		return msgFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "First city: %s\n", sess.start)
	fmt.Fprintf(&b, "Last city: %s\n", sess.end)
	fmt.Fprintf(&b, "Days: %d\n", sess.horizon)
	if len(sess.intermediates) > 0 {
		fmt.Fprintf(&b, "Intermediate cities: %s\n", strings.Join(sess.intermediates, " "))
	}
	fmt.Fprintf(&b, "Visualization: %s", m.dashboardURL)
	return b.String()
}
