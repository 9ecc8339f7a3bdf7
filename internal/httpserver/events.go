package httpserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/clothing_shop/internal/logging"
	"github.com/Skotchmaster/clothing_shop/internal/mykafka"
)

// publish sends a domain event best-effort: a broker problem is logged and
// never fails the request. A nil producer (tests, kafka disabled) is a
// no-op.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}
