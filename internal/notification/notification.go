package notification

import (
    "context"
    "errors"
    "log/slog"

    "github.com/cardledger/cardledger/internal/logging"
)

const (
    // KindBalanceCorrected indicates a card balance was corrected, possibly with forward propagation.
    KindBalanceCorrected = "balance_corrected"
)

// Message describes a notification payload.
type Message struct {
    Kind string
    // Destination identifies the recipient stream; for card events it is the card fingerprint.
    Destination string
    Body        string
    Payload     any
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the logger of the current request.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    logging.FromContext(ctx, n.logger).Info("notification",
        slog.String("kind", message.Kind),
        slog.String("destination", message.Destination),
        slog.String("body", message.Body),
    )
    return nil
}

// Fanout delivers every message to each notifier in turn. All notifiers are
// tried; their errors are joined.
type Fanout []Notifier

// Send implements Notifier.
func (f Fanout) Send(ctx context.Context, message Message) error {
    var errs []error
    for _, n := range f {
        if n == nil {
            continue
        }
        if err := n.Send(ctx, message); err != nil {
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}
