package filesystem

import (
	"os"
	"os/exec"
	"strings"
	"subuk/devname/compute"
	"subuk/devname/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const EventEnvPrefix = "DEVNAME_"

type scriptedEventSubscription struct {
	Event     string
	Script    string
	Mandatory bool
}

// ScriptedComputeEventBroker runs shell scripts subscribed to compute
// events. Event fields are passed as DEVNAME_<FIELD> environment variables.
type ScriptedComputeEventBroker struct {
	logger zerolog.Logger
	subs   []scriptedEventSubscription
}

func NewScriptedComputeEventBroker(logger zerolog.Logger) *ScriptedComputeEventBroker {
	return &ScriptedComputeEventBroker{
		logger: logger,
		subs:   []scriptedEventSubscription{},
	}
}

func (epub *ScriptedComputeEventBroker) Subscribe(event, script string, mandatory bool) {
	epub.subs = append(epub.subs, scriptedEventSubscription{
		Event:     event,
		Script:    script,
		Mandatory: mandatory,
	})
}

func eventEnviron(event compute.Event, eventId string) []string {
	env := os.Environ()
	env = append(env, EventEnvPrefix+"EVENT_ID="+eventId)
	for key, value := range event.Plain() {
		env = append(env, EventEnvPrefix+strings.ToUpper(key)+"="+value)
	}
	return env
}

func (epub *ScriptedComputeEventBroker) Publish(event compute.Event) error {
	eventId := uuid.New().String()
	for _, sub := range epub.subs {
		if sub.Event != event.Name() {
			continue
		}
		cmd := exec.Command("sh", "-c", sub.Script)
		cmd.Env = eventEnviron(event, eventId)
		epub.logger.Info().
			Str("script", sub.Script).
			Str("event", event.Name()).
			Str("event_id", eventId).
			Msg("running script")

		out, err := cmd.CombinedOutput()
		if err != nil {
			if sub.Mandatory {
				return util.NewError(err, "cannot run mandatory script: %s", strings.TrimSpace(string(out)))
			}
			epub.logger.Warn().Err(err).
				Str("out", string(out)).
				Str("script", sub.Script).
				Str("event", event.Name()).
				Msg("cannot run script")
		}
	}
	return nil
}
