package bus

import (
	"fmt"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// New builds the bus for the configured tier: in-process channels for
// "channel", NATS for "nats".
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil
	case "nats":
		return NewNATSBus(cfg)
	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}
