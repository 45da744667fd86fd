package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

// ErrBusy is returned when an unlock handshake is already in flight for the stage.
var ErrBusy = errors.New("hardware: door actuation already in progress")

// DefaultAckWait bounds how long the actuator waits for a hardware acknowledgement.
const DefaultAckWait = 5 * time.Second

// openCommand is the payload the door controller expects on the open topics.
const openCommand = "open"

// Topics names the routing keys of the door handshake.
type Topics struct {
	Outer  string
	Inner  string
	Status string
}

// DefaultTopics returns the routing keys the stock door controller listens on.
func DefaultTopics() Topics {
	return Topics{
		Outer:  "doorbell.open.outer",
		Inner:  "doorbell.open.inner",
		Status: "doorbell.open.status",
	}
}

// Actuator performs the publish-then-wait unlock handshake over a Channel. At most
// one handshake runs per stage at a time; a second caller is rejected with ErrBusy
// instead of queueing behind hardware that may be wedged.
type Actuator struct {
	channel Channel
	topics  Topics
	ackWait time.Duration
	logger  *slog.Logger

	locks map[application.DoorStage]*sync.Mutex
}

// NewActuator wires an actuator over the given channel. ackWait <= 0 selects the
// default.
func NewActuator(channel Channel, topics Topics, ackWait time.Duration, logger *slog.Logger) *Actuator {
	if ackWait <= 0 {
		ackWait = DefaultAckWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Actuator{
		channel: channel,
		topics:  topics,
		ackWait: ackWait,
		logger:  logger,
		locks: map[application.DoorStage]*sync.Mutex{
			application.StageOuter: {},
			application.StageInner: {},
		},
	}
}

// Open publishes the unlock command for the stage and waits for the controller's
// acknowledgement on the status topic. A missing acknowledgement within the wait
// window yields OutcomeTimeout, not an error: the command may still have worked.
func (a *Actuator) Open(ctx context.Context, stage application.DoorStage) (application.StageOutcome, error) {
	lock, ok := a.locks[stage]
	if !ok {
		return "", fmt.Errorf("hardware: unknown door stage %q", stage)
	}
	if !lock.TryLock() {
		return "", ErrBusy
	}
	defer lock.Unlock()

	openTopic, err := a.openTopic(stage)
	if err != nil {
		return "", err
	}

	// Subscribe before publishing so a fast acknowledgement cannot slip past.
	acks, cancel, err := a.channel.Subscribe(ctx, a.topics.Status)
	if err != nil {
		return "", fmt.Errorf("subscribing to door status: %w", err)
	}
	defer cancel()

	if err := a.channel.Publish(ctx, openTopic, []byte(openCommand)); err != nil {
		return "", fmt.Errorf("publishing open command: %w", err)
	}

	success := string(stage) + "_success"
	failed := string(stage) + "_failed"

	timer := time.NewTimer(a.ackWait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			a.logger.Warn("door acknowledgement timed out", "stage", string(stage), "wait", a.ackWait.String())
			return application.OutcomeTimeout, nil
		case msg, ok := <-acks:
			if !ok {
				return "", errors.New("hardware: status subscription closed")
			}
			switch string(msg.Body) {
			case success:
				return application.OutcomeSuccess, nil
			case failed:
				return application.OutcomeFailure, nil
			default:
				// Acknowledgement for the other stage; keep waiting.
			}
		}
	}
}

func (a *Actuator) openTopic(stage application.DoorStage) (string, error) {
	switch stage {
	case application.StageOuter:
		return a.topics.Outer, nil
	case application.StageInner:
		return a.topics.Inner, nil
	}
	return "", fmt.Errorf("hardware: unknown door stage %q", stage)
}
