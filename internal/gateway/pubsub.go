package gateway

import (
	"context"
	"log"

	goredis "github.com/go-redis/redis/v8"
)

// PubSubRouter bridges Redis analysis publications into the hub so a gateway
// process can run separately from the analyzer.
type PubSubRouter struct {
	hub *Hub
	rdb *goredis.Client
}

// NewPubSubRouter creates a router feeding hub from rdb.
func NewPubSubRouter(hub *Hub, rdb *goredis.Client) *PubSubRouter {
	return &PubSubRouter{hub: hub, rdb: rdb}
}

// Run subscribes to all analysis channels and routes messages to the hub.
// Blocks until ctx is cancelled.
func (r *PubSubRouter) Run(ctx context.Context) {
	pubsub := r.rdb.PSubscribe(ctx, "pub:analysis:*")
	defer pubsub.Close()

	log.Println("[gateway] subscribed to analysis channels")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// "pub:analysis:SYMBOL" -> "analysis:SYMBOL"
			r.hub.publishRaw(msg.Channel[len("pub:"):], []byte(msg.Payload))
		}
	}
}
